// Copyright (c) 2026 Gukkan. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package web

// # Copy

// Screen text. These strings are part of the product and must not drift.
const (
	SiteName        = "グッカン"
	SiteDescription = "グッズやゲームを管理するアプリ"
	MyPageLabel     = "マイページ"

	ListTitle    = "所持ゲーム一覧"
	ListSubtitle = "所持しているゲームの一覧を表示します。"
	ListEmpty    = "表示できるゲームがありません。Supabaseにデータを追加してください。"

	SearchTitle       = "ゲームを検索"
	SearchSubtitle    = "タイトルで検索してゲームの詳細に進み、所持登録を行えます。"
	SearchPlaceholder = "タイトルで検索 (例: Zelda)"
	SearchButton      = "検索"
	SearchNoResults   = "該当するゲームが見つかりませんでした。"
	SearchPrompt      = "検索してゲームを絞り込んでください。"

	LoadFailed = "データ取得に失敗しました。設定をご確認ください。"
	CountLabel = "所持数:"

	LoginTitle         = "ログイン"
	LoginUserIDLabel   = "ユーザーID"
	LoginPasswordLabel = "パスワード"
	LoginButton        = "ログイン"
	LoginPending       = "ログイン中..."
	LoginFailed        = "ユーザーIDまたはパスワードが正しくありません。"
	LoginThrottled     = "ログインの試行回数が多すぎます。しばらくしてから再度お試しください。"
)

// # Page Data

// Card is one game tile.
type Card struct {
	ID       string
	Title    string
	Platform string
	Count    int
	Status   string

	// Tone is a presentation token ("success", "info", "neutral", "warning", "danger").
	Tone string
}

// Grid is a list or search screen.
//
// Exactly one of Failed, a non-empty Cards, or Empty is rendered.
type Grid struct {
	Title    string
	Subtitle string

	// Search form; hidden when SearchForm is false.
	SearchForm bool
	Query      string

	Failed bool
	Empty  string
	Cards  []Card
}

// Login is the sign-in screen.
//
// Submitted values are never echoed back, so every failed attempt renders
// the same bytes.
type Login struct {
	Failed bool

	// Throttled replaces the failure message when the submit budget is spent.
	Throttled bool
}

// # Tones

// toneClasses is the only place presentation tokens become CSS.
var toneClasses = map[string]string{
	"success": "bg-green-100 text-green-700 border-green-200 dark:bg-green-900/30 dark:text-green-300 dark:border-green-800",
	"info":    "bg-blue-100 text-blue-700 border-blue-200 dark:bg-blue-900/30 dark:text-blue-300 dark:border-blue-800",
	"neutral": "bg-zinc-100 text-zinc-700 border-zinc-200 dark:bg-zinc-900/30 dark:text-zinc-300 dark:border-zinc-800",
	"warning": "bg-amber-100 text-amber-800 border-amber-200 dark:bg-amber-900/30 dark:text-amber-300 dark:border-amber-800",
	"danger":  "bg-rose-100 text-rose-700 border-rose-200 dark:bg-rose-900/30 dark:text-rose-300 dark:border-rose-800",
}

// ToneClass returns the badge classes for a tone. Unknown tones render neutral.
func ToneClass(tone string) string {
	if classes, ok := toneClasses[tone]; ok {
		return classes
	}
	return toneClasses["neutral"]
}
