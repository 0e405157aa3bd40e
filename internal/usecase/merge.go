package usecase

import (
	"strings"

	"storefront/internal/domain/model"
)

func isLocalID(productID string) bool {
	return strings.HasPrefix(productID, model.LocalIDPrefix)
}

// mergeCartLines はローカルとサーバーのカートを1本にする。
// サーバー行が常に優先（価格・在庫・数量ともサーバー値）。
// ローカルだけの行はlocal-接頭辞でなければ残し、同期候補として返す。
func mergeCartLines(local, remote []model.CartLine) (merged []model.CartLine, toSync []model.CartLine) {
	merged = make([]model.CartLine, 0, len(remote)+len(local))
	seen := make(map[string]bool, len(remote))

	for _, r := range remote {
		r.Dirty = false
		merged = append(merged, r)
		seen[r.ProductID] = true
	}

	for _, l := range local {
		if seen[l.ProductID] {
			continue
		}
		if l.IsLocalOnly() {
			// 端末限定の行は同期しない前提で作られたもの。マージ結果にも入れない
			continue
		}
		merged = append(merged, l)
		toSync = append(toSync, l)
	}

	return merged, toSync
}

// mergeWishlist は集合としてのお気に入りを同じ規則で突合する。
func mergeWishlist(local, remote []model.WishlistEntry) (merged []model.WishlistEntry, toSync []model.WishlistEntry) {
	merged = make([]model.WishlistEntry, 0, len(remote)+len(local))
	seen := make(map[string]bool, len(remote))

	for _, r := range remote {
		r.Dirty = false
		merged = append(merged, r)
		seen[r.ProductID] = true
	}

	for _, l := range local {
		if seen[l.ProductID] {
			continue
		}
		if l.IsLocalOnly() {
			continue
		}
		merged = append(merged, l)
		toSync = append(toSync, l)
	}

	return merged, toSync
}

// normalizeCartLines は壊れた保存値を描画可能な形に直す。
// 商品が解決できない行は捨てずにUnknown Productへ退避する。
func normalizeCartLines(lines []model.CartLine) []model.CartLine {
	out := make([]model.CartLine, 0, len(lines))
	seen := make(map[string]bool, len(lines))

	for _, l := range lines {
		if l.ProductID == "" || seen[l.ProductID] {
			continue
		}
		seen[l.ProductID] = true

		if l.Quantity < 1 {
			l.Quantity = 1
		}
		if l.Name == "" {
			l = model.PlaceholderLine(l.ProductID, l.Quantity)
		}
		out = append(out, l)
	}
	return out
}

func normalizeWishlist(entries []model.WishlistEntry) []model.WishlistEntry {
	out := make([]model.WishlistEntry, 0, len(entries))
	seen := make(map[string]bool, len(entries))

	for _, e := range entries {
		if e.ProductID == "" || seen[e.ProductID] {
			continue
		}
		seen[e.ProductID] = true

		if e.Name == "" {
			e = model.PlaceholderEntry(e.ProductID)
		}
		out = append(out, e)
	}
	return out
}

// markDirty は同期できなかった行に印を付ける。
func markDirty(merged []model.CartLine, failed []model.CartLine) []model.CartLine {
	ids := make(map[string]bool, len(failed))
	for _, f := range failed {
		ids[f.ProductID] = true
	}
	for i := range merged {
		if ids[merged[i].ProductID] {
			merged[i].Dirty = true
		}
	}
	return merged
}

func upsertLine(lines []model.CartLine, line model.CartLine) []model.CartLine {
	for i := range lines {
		if lines[i].ProductID == line.ProductID {
			lines[i] = line
			return lines
		}
	}
	return append(lines, line)
}
