package feed

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/MrSnakeDoc/kompas/internal/domain"
)

// SectionType names the kind of a home section
type SectionType string

const (
	SectionBreakingNews   SectionType = "breaking_news"
	SectionLiveReport     SectionType = "live_report"
	SectionIframeCampaign SectionType = "iframe_campaign"
	SectionHotTopics      SectionType = "hot_topics"
	SectionArticles       SectionType = "articles"
)

// ErrUnknownSection is returned when a section's data carries none of the
// known variant keys.
var ErrUnknownSection = errors.New("unknown section type")

// HomeSection is one block of the home feed
type HomeSection struct {
	Type  SectionType  `json:"type" yaml:"type"`
	Title string       `json:"title,omitempty" yaml:"title,omitempty"`
	Data  *SectionData `json:"data,omitempty" yaml:"data,omitempty"`
}

// BreakingNews is the headline block at the top of the feed
type BreakingNews struct {
	Headline      string           `json:"headline" yaml:"headline"`
	Subheadline   string           `json:"subheadline" yaml:"subheadline"`
	PublishedTime string           `json:"published_time" yaml:"published_time"`
	Articles      []domain.Article `json:"articles" yaml:"articles"`
	Source        string           `json:"source" yaml:"source"`
	Image         string           `json:"image,omitempty" yaml:"image,omitempty"`
}

// HeadlineArticle is the bookmarkable article behind the headline.
// Its ID is the headline with spaces replaced by underscores.
func (b BreakingNews) HeadlineArticle() domain.Article {
	return domain.Article{
		ID:            strings.ReplaceAll(b.Headline, " ", "_"),
		Title:         b.Headline,
		PublishedTime: b.PublishedTime,
		Description:   b.Subheadline,
		Image:         b.Image,
	}
}

// LiveReport is a running coverage block
type LiveReport struct {
	ReportType       string            `json:"report_type" yaml:"report_type"`
	MainArticle      MainArticle       `json:"main_article" yaml:"main_article"`
	RelatedArticles  []RelatedArticle  `json:"related_articles" yaml:"related_articles"`
	MoreReports      MoreReports       `json:"more_reports" yaml:"more_reports"`
	FeaturedArticles []FeaturedArticle `json:"featured_articles" yaml:"featured_articles"`
}

type MainArticle struct {
	Category      string `json:"category" yaml:"category"`
	Title         string `json:"title" yaml:"title"`
	Image         string `json:"image,omitempty" yaml:"image,omitempty"`
	PublishedTime string `json:"published_time" yaml:"published_time"`
}

type RelatedArticle struct {
	Title         string `json:"title" yaml:"title"`
	PublishedTime string `json:"published_time" yaml:"published_time"`
}

type MoreReports struct {
	Label string `json:"label" yaml:"label"`
	Count string `json:"count" yaml:"count"`
}

type FeaturedArticle struct {
	Title string `json:"title" yaml:"title"`
	Image string `json:"image,omitempty" yaml:"image,omitempty"`
}

// IframeCampaign embeds a web page in the feed
type IframeCampaign struct {
	Title    string `json:"title" yaml:"title"`
	Subtitle string `json:"subtitle" yaml:"subtitle"`
	URL      string `json:"url" yaml:"url"`
}

type HotTopic struct {
	Title            string `json:"title" yaml:"title"`
	ImageDescription string `json:"image_description" yaml:"image_description"`
	Image            string `json:"image,omitempty" yaml:"image,omitempty"`
}

type HotTopics struct {
	Section string     `json:"section" yaml:"section"`
	Topics  []HotTopic `json:"topics" yaml:"topics"`
}

// SectionData holds exactly one variant. Decoding picks the first variant
// key present, in the order breaking_news, live_report, iframe_campaign,
// hot_topics, articles.
type SectionData struct {
	BreakingNews   *BreakingNews
	LiveReport     *LiveReport
	IframeCampaign *IframeCampaign
	HotTopics      *HotTopics
	Articles       []domain.Article
}

// rawSectionData is the wire shape: an object keyed by variant name.
type rawSectionData struct {
	BreakingNews   *BreakingNews     `json:"breaking_news,omitempty" yaml:"breaking_news,omitempty"`
	LiveReport     *LiveReport       `json:"live_report,omitempty" yaml:"live_report,omitempty"`
	IframeCampaign *IframeCampaign   `json:"iframe_campaign,omitempty" yaml:"iframe_campaign,omitempty"`
	HotTopics      *HotTopics        `json:"hot_topics,omitempty" yaml:"hot_topics,omitempty"`
	Articles       *[]domain.Article `json:"articles,omitempty" yaml:"articles,omitempty"`
}

// Kind returns the variant held, or "" for an empty value
func (d SectionData) Kind() SectionType {
	switch {
	case d.BreakingNews != nil:
		return SectionBreakingNews
	case d.LiveReport != nil:
		return SectionLiveReport
	case d.IframeCampaign != nil:
		return SectionIframeCampaign
	case d.HotTopics != nil:
		return SectionHotTopics
	case d.Articles != nil:
		return SectionArticles
	}
	return ""
}

// Articles returns the bookmarkable articles of a section
func (s HomeSection) Articles() []domain.Article {
	if s.Data == nil {
		return nil
	}

	switch s.Data.Kind() {
	case SectionBreakingNews:
		bn := s.Data.BreakingNews
		out := make([]domain.Article, 0, len(bn.Articles)+1)
		out = append(out, bn.HeadlineArticle())
		return append(out, bn.Articles...)
	case SectionLiveReport:
		lr := s.Data.LiveReport
		out := make([]domain.Article, 0, len(lr.RelatedArticles)+1)
		out = append(out, domain.Article{
			Title:         lr.MainArticle.Title,
			PublishedTime: lr.MainArticle.PublishedTime,
			Image:         lr.MainArticle.Image,
		})
		for _, related := range lr.RelatedArticles {
			out = append(out, domain.Article{
				Title:         related.Title,
				PublishedTime: related.PublishedTime,
			})
		}
		return out
	case SectionArticles:
		return s.Data.Articles
	}
	return nil
}

func (d *SectionData) fromRaw(raw rawSectionData) error {
	*d = SectionData{}
	switch {
	case raw.BreakingNews != nil:
		d.BreakingNews = raw.BreakingNews
	case raw.LiveReport != nil:
		d.LiveReport = raw.LiveReport
	case raw.IframeCampaign != nil:
		d.IframeCampaign = raw.IframeCampaign
	case raw.HotTopics != nil:
		d.HotTopics = raw.HotTopics
	case raw.Articles != nil:
		d.Articles = *raw.Articles
		if d.Articles == nil {
			d.Articles = []domain.Article{}
		}
	default:
		return ErrUnknownSection
	}
	return nil
}

func (d SectionData) toRaw() rawSectionData {
	var raw rawSectionData
	switch d.Kind() {
	case SectionBreakingNews:
		raw.BreakingNews = d.BreakingNews
	case SectionLiveReport:
		raw.LiveReport = d.LiveReport
	case SectionIframeCampaign:
		raw.IframeCampaign = d.IframeCampaign
	case SectionHotTopics:
		raw.HotTopics = d.HotTopics
	case SectionArticles:
		articles := d.Articles
		raw.Articles = &articles
	}
	return raw
}

// UnmarshalJSON implements json.Unmarshaler
func (d *SectionData) UnmarshalJSON(data []byte) error {
	var raw rawSectionData
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if err := d.fromRaw(raw); err != nil {
		return fmt.Errorf("section data: %w", err)
	}
	return nil
}

// MarshalJSON implements json.Marshaler
func (d SectionData) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.toRaw())
}

// UnmarshalYAML implements yaml.Unmarshaler
func (d *SectionData) UnmarshalYAML(value *yaml.Node) error {
	var raw rawSectionData
	if err := value.Decode(&raw); err != nil {
		return err
	}
	if err := d.fromRaw(raw); err != nil {
		return fmt.Errorf("section data at line %d: %w", value.Line, err)
	}
	return nil
}
