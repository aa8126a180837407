// Package fetch turns a topic query into a cited digest using the configured
// search provider.
//
// Provider failures never surface as errors: they are rendered into a
// localized message the feed can show as a card. The error return is kept
// for context cancellation so the refresh orchestrator can tell a timed-out
// fetch from a failed one.
package fetch

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/abelbrown/infopulse/internal/brain"
	"github.com/abelbrown/infopulse/internal/logging"
	"github.com/abelbrown/infopulse/internal/model"
)

// BillingURL is where permission and quota errors send the user.
const BillingURL = "https://console.cloud.google.com/billing/linkedaccount?project=infopluse"

// Request describes one topic fetch.
type Request struct {
	Query           string
	Language        model.Language
	ExcludedSources []string
}

// Result is the digest for one topic.
type Result struct {
	Text    string
	Sources []model.SourceLink
}

// ProviderSource yields the provider to use for the next fetch, or nil.
type ProviderSource interface {
	GetAvailable() brain.Provider
}

// Fetcher retrieves topic digests.
type Fetcher struct {
	providers ProviderSource
	maxTokens int
}

// NewFetcher creates a Fetcher over the given providers.
func NewFetcher(providers ProviderSource) *Fetcher {
	return &Fetcher{
		providers: providers,
		maxTokens: 1024,
	}
}

// Fetch retrieves the latest digest for req.Query. The returned error is
// non-nil only when ctx is cancelled or its deadline passes.
func (f *Fetcher) Fetch(ctx context.Context, req Request) (Result, error) {
	if ctx.Err() != nil {
		return Result{}, ctx.Err()
	}

	var p brain.Provider
	if f.providers != nil {
		p = f.providers.GetAvailable()
	}
	if p == nil {
		logging.Error("No search provider configured", "query", req.Query)
		return Result{Text: configErrorMessage(req.Language)}, nil
	}

	resp, err := p.Search(ctx, brain.SearchRequest{
		Prompt:     BuildPrompt(req),
		Query:      req.Query,
		Language:   string(req.Language),
		Exclusions: req.ExcludedSources,
		MaxTokens:  f.maxTokens,
	})
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return Result{}, ctxErr
		}
		if errors.Is(err, brain.ErrNotConfigured) {
			return Result{Text: configErrorMessage(req.Language)}, nil
		}
		logging.Error("Search provider failed", "provider", p.Name(), "query", req.Query, "error", err)
		return Result{Text: ErrorMessage(req.Language, err)}, nil
	}

	text := resp.Content
	if strings.TrimSpace(text) == "" {
		text = noInfoMessage(req.Language)
	}

	sources := make([]model.SourceLink, 0, len(resp.Sources))
	for _, s := range resp.Sources {
		sources = append(sources, model.SourceLink{Title: s.Title, URL: s.URL})
	}

	logging.Debug("Fetched topic", "provider", p.Name(), "query", req.Query, "sources", len(sources))
	return Result{Text: text, Sources: sources}, nil
}

// BuildPrompt builds the search instruction for a topic.
func BuildPrompt(req Request) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Please search for the latest information regarding this topic: %q.\n\n", req.Query)
	b.WriteString("I need you to look for recent updates from professional news websites and social media.\n")
	if len(req.ExcludedSources) > 0 {
		fmt.Fprintf(&b, "Please IGNORE and DO NOT use any information from the following sources/platforms: %s.\n",
			strings.Join(req.ExcludedSources, ", "))
	}
	b.WriteString("\nSummarize the latest findings in a concise, engaging way (about 100-150 words).\n")
	b.WriteString("Include dates of events if found.\n\n")
	b.WriteString("IMPORTANT CITATION FORMAT:\n")
	b.WriteString("When you mention a fact, cite the source using a bracketed number like [1], [2], etc. corresponding to the order of information found.\n")
	b.WriteString("Ensure these numbers appear inline within the text (e.g., \"The event happened yesterday[1].\").\n\n")
	b.WriteString("Format the output in Markdown.\n")
	b.WriteString("If there is no recent news (last 48 hours), summarize the most relevant general status of the topic.\n\n")

	if req.Language == model.LangChinese {
		b.WriteString("Please write the summary strictly in Simplified Chinese (简体中文).")
	} else {
		b.WriteString("Please write the summary strictly in English.")
	}

	return b.String()
}

// ErrorMessage renders a provider error as a user-facing message.
func ErrorMessage(lang model.Language, err error) string {
	detail := err.Error()
	lower := strings.ToLower(detail)

	status := 0
	var apiErr *brain.APIError
	if errors.As(err, &apiErr) {
		status = apiErr.StatusCode
	}

	isAuth := status == http.StatusUnauthorized || status == http.StatusForbidden ||
		strings.Contains(lower, "key") || strings.Contains(lower, "permission")
	isQuota := status == http.StatusBadRequest || status == http.StatusTooManyRequests ||
		strings.Contains(lower, "quota") || strings.Contains(lower, "billing")

	zh := lang == model.LangChinese
	var msg string
	switch {
	case isAuth && zh:
		msg = fmt.Sprintf("API 权限错误 (403)。您的项目可能未关联结算账户。\n\n**解决方法**：\n请访问 [Google Cloud Console](%s) 并为项目关联一个结算账户 (Billing Account)。", BillingURL)
	case isAuth:
		msg = fmt.Sprintf("API Permission Error (403). Your project might not be linked to a billing account.\n\n**Fix**: Visit [Google Cloud Console](%s) and link a billing account to the project.", BillingURL)
	case isQuota && zh:
		msg = fmt.Sprintf("API 配额或结算错误 (Billing/Quota)。\nGoogle Cloud 要求项目必须关联有效的结算账户。\n\n**请点击修复**：\n[关联结算账户](%s)", BillingURL)
	case isQuota:
		msg = fmt.Sprintf("API Failure (Billing/Quota). Google Cloud requires a linked billing account.\n\n**Click to Fix**:\n[Link Billing Account](%s)", BillingURL)
	case zh:
		msg = "抱歉，暂时无法获取该主题的更新。"
	default:
		msg = "Sorry, I couldn't fetch updates for this topic at the moment."
	}

	return fmt.Sprintf("⚠️ %s\n\n(Error Details: %s)", msg, detail)
}

func configErrorMessage(lang model.Language) string {
	if lang == model.LangChinese {
		return "配置错误：系统未检测到 API 密钥。请设置环境变量 GEMINI_API_KEY（或写入 .env 文件），然后重新启动应用。"
	}
	return "Configuration Error: API Key missing. Set GEMINI_API_KEY (or add it to .env) and restart."
}

func noInfoMessage(lang model.Language) string {
	if lang == model.LangChinese {
		return "未找到相关信息。"
	}
	return "No information found."
}
