package ui

import (
	"fmt"
	"time"

	"github.com/abelbrown/infopulse/internal/model"
)

// texts holds every user-visible string for one language.
type texts struct {
	navFeed, navFavorites, navAdd, navMine string

	feedTitle     string
	emptyTitle    string
	emptyDesc     string
	loading       string
	noUpdates     string
	sources       string
	noFavorites   string
	favoritesHint string

	addTitle       string
	labelQuery     string
	placeholder    string
	descQuery      string
	labelTime      string
	descTime       string
	btnLoading     string
	btnStart       string
	emptyQueryWarn string

	mineTitle     string
	mineEmpty     string
	dailyAt       string
	settings      string
	language      string
	dataSources   string
	excluded      string
	version       string
	apiKeyStatus  string
	keyConfigured string
	keyMissing    string
	provider      string
	confirmDelete string

	bandToday     string
	bandYesterday string
	bandEarlier   string

	refreshed     string // %d
	refreshFailed string // %d
	orphaned      string // %d
}

var translations = map[model.Language]texts{
	model.LangEnglish: {
		navFeed:      "Feed",
		navFavorites: "Saved",
		navAdd:       "Add",
		navMine:      "Mine",

		feedTitle:     "Latest Updates",
		emptyTitle:    "No topics yet",
		emptyDesc:     "Press a to add news, people, or events you want to track.",
		loading:       "AI is gathering latest news from the web...",
		noUpdates:     "No updates yet. Press r to search.",
		sources:       "Sources:",
		noFavorites:   "Nothing saved yet.",
		favoritesHint: "Press f on a card in the feed to save it here.",

		addTitle:       "Track New Topic",
		labelQuery:     "What do you want to track?",
		placeholder:    "E.g., Latest breakthroughs in SpaceX Starship",
		descQuery:      "AI will search Google, social media (Weibo, X), and news sites.",
		labelTime:      "Daily Digest Time",
		descTime:       "We will prioritize fetching fresh updates around this time.",
		btnLoading:     "Adding...",
		btnStart:       "Start Tracking",
		emptyQueryWarn: "Please enter something to track.",

		mineTitle:     "My Topics",
		mineEmpty:     "You aren't tracking anything yet.",
		dailyAt:       "Daily at",
		settings:      "Settings",
		language:      "Language",
		dataSources:   "Data Sources",
		excluded:      "excluded",
		version:       "Version",
		apiKeyStatus:  "API Key Status",
		keyConfigured: "Configured (已配置)",
		keyMissing:    "Missing (未配置)",
		provider:      "Search Provider",
		confirmDelete: "Delete this topic? All related news history will also be removed. (y/n)",

		bandToday:     "Today",
		bandYesterday: "Yesterday",
		bandEarlier:   "Earlier",

		refreshed:     "Updated %d topic(s)",
		refreshFailed: "%d topic(s) could not be fetched",
		orphaned:      "%d result(s) dropped for deleted topics",
	},
	model.LangChinese: {
		navFeed:      "动态",
		navFavorites: "收藏",
		navAdd:       "添加",
		navMine:      "我的",

		feedTitle:     "最新动态",
		emptyTitle:    "暂无订阅",
		emptyDesc:     "按 a 添加您想追踪的新闻、人物或事件。",
		loading:       "AI正在全网搜集最新消息...",
		noUpdates:     "暂无更新，请按 r 刷新。",
		sources:       "消息来源：",
		noFavorites:   "还没有收藏。",
		favoritesHint: "在动态中按 f 收藏卡片。",

		addTitle:       "添加追踪主题",
		labelQuery:     "您想追踪什么？",
		placeholder:    "例如：SpaceX 星舰最新进展",
		descQuery:      "AI将搜索谷歌、社交媒体（微博、X）和新闻网站。",
		labelTime:      "每日推送时间",
		descTime:       "我们将在此时间附近为您获取最新更新。",
		btnLoading:     "添加中...",
		btnStart:       "开始追踪",
		emptyQueryWarn: "请输入要追踪的内容。",

		mineTitle:     "我的订阅",
		mineEmpty:     "您还没有追踪任何主题。",
		dailyAt:       "每日",
		settings:      "设置",
		language:      "语言 / Language",
		dataSources:   "数据来源",
		excluded:      "已排除",
		version:       "版本",
		apiKeyStatus:  "API Key 状态",
		keyConfigured: "Configured (已配置)",
		keyMissing:    "Missing (未配置)",
		provider:      "搜索服务",
		confirmDelete: "确定要删除这个主题吗？所有相关的历史消息也将被移除。(y/n)",

		bandToday:     "今天",
		bandYesterday: "昨天",
		bandEarlier:   "更早",

		refreshed:     "已更新 %d 个主题",
		refreshFailed: "%d 个主题获取失败",
		orphaned:      "已丢弃 %d 条已删除主题的结果",
	},
}

// textsFor returns the strings for lang, falling back to the default language.
func textsFor(lang model.Language) texts {
	if tr, ok := translations[lang]; ok {
		return tr
	}
	return translations[model.DefaultLanguage]
}

// formatTimestamp formats a card timestamp the way each locale expects.
func formatTimestamp(ts time.Time, lang model.Language) string {
	ts = ts.Local()
	if lang == model.LangChinese {
		return fmt.Sprintf("%d月%d日 %s", ts.Month(), ts.Day(), ts.Format("15:04"))
	}
	return ts.Format("Jan 2, 03:04 PM")
}
