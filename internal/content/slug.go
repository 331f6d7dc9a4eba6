package content

import "strings"

// SanitizeSlug はタイトルからURLスラッグを導出する。
// 小文字化し、空白をハイフンに置換し、英数字とハイフン以外を除去し、
// 連続ハイフンを1つにまとめ、先頭と末尾のハイフンを取り除く。
// 同一入力に対して常に同一出力を返す（冪等）。
func SanitizeSlug(title string) string {
	s := strings.ToLower(strings.TrimSpace(title))

	var b strings.Builder
	b.Grow(len(s))
	lastHyphen := false
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			lastHyphen = false
		case r == '-', r == ' ', r == '\t', r == '\n', r == '\r':
			if !lastHyphen {
				b.WriteByte('-')
				lastHyphen = true
			}
		default:
			// 英数字・ハイフン・空白以外は除去
		}
	}

	return strings.Trim(b.String(), "-")
}
