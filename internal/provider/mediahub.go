package provider

import (
	"context"
	"errors"
	"regexp"
	"strings"

	"github.com/cloo-solutions/justicesearch/internal/domain"
	"github.com/cloo-solutions/justicesearch/internal/mediahub"
	"go.uber.org/zap"
)

const (
	MediaHubProviderName     = string(domain.SourceMediaHub)
	MediaHubProviderCategory = "Media & stories"

	defaultMediaLimit = 50
	untitledMedia     = "Untitled media"
)

// MediaLister is the slice of the media hub client the provider needs.
type MediaLister interface {
	ListMedia(ctx context.Context, params mediahub.ListParams) ([]mediahub.Item, error)
	Health(ctx context.Context) error
}

// URLSigner turns stored object references into fetchable URLs.
type URLSigner interface {
	PresignURL(ctx context.Context, raw string) (string, error)
}

// MediaHubConfig scopes the provider to one hub project.
type MediaHubConfig struct {
	ProjectID string
	Limit     int
}

// MediaHubProvider searches photos, video, audio and stories held by the
// external media hub.
type MediaHubProvider struct {
	client MediaLister
	signer URLSigner
	cfg    MediaHubConfig
	logger *zap.Logger
}

// NewMediaHubProvider creates a MediaHubProvider. signer may be nil, in
// which case thumbnails are passed through untouched.
func NewMediaHubProvider(client MediaLister, signer URLSigner, cfg MediaHubConfig, logger *zap.Logger) *MediaHubProvider {
	if cfg.Limit <= 0 {
		cfg.Limit = defaultMediaLimit
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &MediaHubProvider{
		client: client,
		signer: signer,
		cfg:    cfg,
		logger: logger.With(zap.String("provider", MediaHubProviderName)),
	}
}

func (p *MediaHubProvider) Name() string { return MediaHubProviderName }

func (p *MediaHubProvider) Category() string { return MediaHubProviderCategory }

// IsAvailable reports whether the hub answers its health check.
func (p *MediaHubProvider) IsAvailable(ctx context.Context) bool {
	ctx, cancel := context.WithTimeout(ctx, availabilityTimeout)
	defer cancel()
	return p.client.Health(ctx) == nil
}

var mediaKindPatterns = []struct {
	kind    string
	pattern *regexp.Regexp
}{
	{kind: "image", pattern: regexp.MustCompile(`(?i)\b(?:photos?|images?|pictures?|photographs?)\b`)},
	{kind: "video", pattern: regexp.MustCompile(`(?i)\b(?:videos?|films?|footage)\b`)},
	{kind: "audio", pattern: regexp.MustCompile(`(?i)\b(?:audio|podcasts?|recordings?)\b`)},
	{kind: "story", pattern: regexp.MustCompile(`(?i)\bstor(?:y|ies)\b`)},
}

// MediaKindHint derives the hub's media_type filter from the raw query.
// It returns "" when the query names no kind.
func MediaKindHint(q string) string {
	for _, mk := range mediaKindPatterns {
		if mk.pattern.MatchString(q) {
			return mk.kind
		}
	}
	return ""
}

// wantsMedia reports whether the hub is worth calling for sc.
func wantsMedia(sc domain.SearchContext) bool {
	return sc.WantsType(domain.ResultTypeMedia) ||
		sc.WantsType(domain.ResultTypeStory) ||
		sc.Intent == domain.IntentFindMedia
}

// Search calls the hub only when the context asks for media or stories.
// The media kind filter is derived from term.
func (p *MediaHubProvider) Search(ctx context.Context, term string, sc domain.SearchContext) ([]domain.SearchResult, error) {
	if !wantsMedia(sc) {
		return []domain.SearchResult{}, nil
	}

	items, err := p.client.ListMedia(ctx, mediahub.ListParams{
		ProjectID:      p.cfg.ProjectID,
		MediaType:      MediaKindHint(term),
		ApprovedOnly:   sc.VerifiedOnly,
		CulturalTags:   sc.Tags,
		OrganizationID: sc.OrganizationID,
		Limit:          p.cfg.Limit,
	})
	if err != nil {
		timeout := errors.Is(err, context.DeadlineExceeded) || ctx.Err() != nil
		p.logger.Warn("media hub search failed", zap.Bool("timeout", timeout), zap.Error(err))
		return []domain.SearchResult{}, &domain.ProviderError{
			Provider: MediaHubProviderName,
			Category: MediaHubProviderCategory,
			Timeout:  timeout,
			Err:      err,
		}
	}

	words := contentWords(term)
	restrictTypes := sc.WantsType(domain.ResultTypeMedia) || sc.WantsType(domain.ResultTypeStory)

	out := make([]domain.SearchResult, 0, len(items))
	for _, item := range items {
		if strings.TrimSpace(item.ID) == "" {
			p.logger.Warn("dropping media item without id", zap.String("title", item.Title))
			continue
		}
		rt := mediaResultType(item)
		if restrictTypes && !sc.WantsType(rt) {
			continue
		}
		if !itemMatches(item, words) {
			continue
		}
		if sc.VerifiedOnly && !item.ElderApproved {
			continue
		}
		out = append(out, p.toResult(ctx, term, item, rt, sc.Tags))
	}
	return out, nil
}

// contentWords drops the words that only name a media kind, since the hub
// has already filtered on kind and item text rarely repeats it.
func contentWords(term string) []string {
	var words []string
	for _, w := range strings.Fields(strings.ToLower(term)) {
		if w == "media" || w == "gallery" || MediaKindHint(w) != "" {
			continue
		}
		words = append(words, w)
	}
	return words
}

func mediaResultType(item mediahub.Item) domain.ResultType {
	if strings.EqualFold(item.MediaType, "story") {
		return domain.ResultTypeStory
	}
	return domain.ResultTypeMedia
}

// itemMatches re-filters hub results: the hub filters by kind and tags
// only, so text relevance is checked here.
func itemMatches(item mediahub.Item, words []string) bool {
	if len(words) == 0 {
		return true
	}
	haystack := strings.ToLower(strings.Join([]string{
		item.Title, item.Description, item.AltText, strings.Join(item.CulturalTags, " "),
	}, " "))
	for _, w := range words {
		if containsWord(haystack, w) {
			return true
		}
	}
	return false
}

func (p *MediaHubProvider) toResult(ctx context.Context, term string, item mediahub.Item, rt domain.ResultType, queryTags []string) domain.SearchResult {
	title := item.Title
	if title == "" {
		title = item.AltText
	}
	if title == "" {
		title = untitledMedia
	}
	description := item.Description
	if description == "" {
		description = item.AltText
	}

	kind := strings.ToLower(item.MediaType)
	if kind == "photo" {
		kind = "image"
	}

	meta := domain.Metadata{}
	meta.Set(domain.MetaMediaKind, kind).
		Set(domain.MetaImageURL, p.thumbnail(ctx, item)).
		Set(domain.MetaOrganizationID, item.OrganizationID).
		Set(domain.MetaCulturalSensitivity, item.CulturalSensitivity).
		Set(domain.MetaTags, item.CulturalTags).
		Set(domain.MetaCreatedAt, item.CreatedAt)
	if item.ElderApproved {
		meta[domain.MetaElderApproved] = true
	}

	return domain.SearchResult{
		ID:          item.ID,
		Type:        rt,
		Title:       title,
		Description: domain.TruncateDescription(description),
		URL:         item.URL,
		Score: Score(term, Candidate{
			Title:         title,
			Description:   item.Description + " " + item.AltText,
			Tags:          item.CulturalTags,
			ElderApproved: item.ElderApproved,
		}, queryTags),
		Source: domain.Source{
			Name:   domain.SourceMediaHub,
			Origin: "media",
		},
		Metadata: meta,
	}
}

// thumbnail presigns s3:// thumbnails. A signing failure drops the image
// rather than the result.
func (p *MediaHubProvider) thumbnail(ctx context.Context, item mediahub.Item) string {
	raw := item.ThumbnailURL
	if raw == "" || p.signer == nil {
		return raw
	}
	signed, err := p.signer.PresignURL(ctx, raw)
	if err != nil {
		p.logger.Debug("thumbnail presign failed", zap.String("id", item.ID), zap.Error(err))
		return ""
	}
	return signed
}
