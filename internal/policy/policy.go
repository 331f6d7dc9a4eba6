// Package policy はロールと担当範囲に基づく認可判定を提供する。
//
// すべての判定は純粋関数であり、副作用もエラーも持たない。
// プロフィールがnil（未認証またはロール未割当）の場合は、
// すべての問い合わせに対して空集合またはfalseを返す。
// 呼び出し側は「プロフィールなし」をエラーではなく静かな拒否として扱うこと。
//
// 変更操作の認可チェックはすべてこのパッケージを経由する。
// ロール判定をハンドラーやサービスにインラインで書かないこと。
package policy

import "github.com/youssef/agora/internal/model"

// CommissionSet はプロフィールが書き込み可能な委員会タグの集合を表す。
type CommissionSet map[model.Commission]bool

// Contains はcが集合に含まれるかどうかを返す。
func (s CommissionSet) Contains(c model.Commission) bool {
	return s[c]
}

// Empty は集合が空かどうかを返す。
func (s CommissionSet) Empty() bool {
	return len(s) == 0
}

// Slice は集合を固定順（ir, mp, sd）のスライスとして返す。
// クエリのIN句やレスポンス生成で使用する。
func (s CommissionSet) Slice() []model.Commission {
	var out []model.Commission
	for _, c := range model.AllCommissions() {
		if s[c] {
			out = append(out, c)
		}
	}
	return out
}

// ManageableCommissions はプロフィールが管理できる委員会タグの集合を返す。
// fullスコープのsuper_adminは全委員会、単一スコープのsuper_adminは
// そのスコープのみ。editorはスコープフィールドの値に関わらず常に空集合。
func ManageableCommissions(p *model.Profile) CommissionSet {
	set := CommissionSet{}
	if p == nil || p.Role != model.RoleSuperAdmin {
		return set
	}
	if p.Scope == model.ScopeFull {
		for _, c := range model.AllCommissions() {
			set[c] = true
		}
		return set
	}
	if c := model.Commission(p.Scope); model.ValidCommission(c) {
		set[c] = true
	}
	return set
}

// CanManageArticles はプロフィールが記事を管理できるかどうかを返す。
// editor（自分の記事のみ）とfullスコープのsuper_adminのみtrue。
// 単一委員会スコープのsuper_adminはニュースを管理できても記事は管理できない。
// この非対称は意図的な仕様であり「修正」しないこと。
func CanManageArticles(p *model.Profile) bool {
	if p == nil {
		return false
	}
	if p.Role == model.RoleEditor {
		return true
	}
	return HasFullAccess(p)
}

// CanViewContactSubmissions はプロフィールが問い合わせを閲覧できるかどうかを返す。
// fullスコープのsuper_adminのみtrue。
func CanViewContactSubmissions(p *model.Profile) bool {
	return HasFullAccess(p)
}

// CanMutateNewsItem はプロフィールが指定のニュースを変更できるかどうかを返す。
// 保存済みアイテムの委員会タグに対して判定するため、呼び出し側は
// リクエスト中の申告値ではなく現在のストア上のアイテムを渡すこと。
func CanMutateNewsItem(p *model.Profile, item *model.NewsItem) bool {
	if p == nil || item == nil {
		return false
	}
	return ManageableCommissions(p).Contains(item.Commission)
}

// CanMutateArticle はプロフィールが指定の記事を変更できるかどうかを返す。
// fullスコープのsuper_admin、または自分が執筆したeditorのみtrue。
func CanMutateArticle(p *model.Profile, article *model.Article) bool {
	if p == nil || article == nil {
		return false
	}
	if HasFullAccess(p) {
		return true
	}
	return p.Role == model.RoleEditor && article.AuthorID == p.ID
}

// HasFullAccess はプロフィールが無制限アクセスを持つかどうかを返す。
// fullスコープのsuper_adminは全ニュースと全記事を管理できる唯一の設定であり、
// 意図的なスーパーユーザー用の抜け道として独立したケースとして扱う。
func HasFullAccess(p *model.Profile) bool {
	return p != nil && p.Role == model.RoleSuperAdmin && p.Scope == model.ScopeFull
}
