// Package content holds the shared data model that flows through every
// pipeline stage: Extract produces ExtractedContent, Reconstruct rewrites
// it, Chunk slices it into Chunks. Nothing in this package talks to the
// network or a DOM library — it is pure data plus small deterministic
// helpers, the same role the teacher repo's internal/metadata/data.go
// plays for its own narrower event model.
package content

import "time"

// Heading is one entry of a document's heading list (§3).
type Heading struct {
	Level  int
	Text   string
	Anchor string
}

// Image describes a discovered image and enough context to judge its
// relevance to nearby text.
type Image struct {
	URL      string
	Alt      string
	Context  string
	Position int
	Format   string
	Width    int
	Height   int
}

// Link is a discovered hyperlink.
type Link struct {
	URL  string
	Text string
	Rel  string
}

// BasicMeta mirrors the "basic" metadata bundle of §3/§4.5.
type BasicMeta struct {
	Title       string
	Description string
	Keywords    []string
	Author      string
	Canonical   string
	Alternates  []Alternate
	Lang        string
	Charset     string
	Viewport    string
	ThemeColor  string
	Robots      string
}

// Alternate is a <link rel=alternate hreflang=...> entry.
type Alternate struct {
	HrefLang string
	Href     string
}

// OpenGraph holds og:* meta tags.
type OpenGraph struct {
	Title       string
	Type        string
	Image       string
	ImageWidth  int
	ImageHeight int
	URL         string
	SiteName    string
	Description string
}

// TwitterCard holds twitter:* meta tags.
type TwitterCard struct {
	Card        string
	Site        string
	Creator     string
	Title       string
	Description string
	Image       string
}

// SchemaOrg is the best-effort JSON-LD extraction result.
type SchemaOrg struct {
	MainEntityType string
	Article        *ArticleEntity
	Organization   *OrganizationEntity
	Person         *PersonEntity
	Software       *SoftwareEntity
	Product        *ProductEntity
	WebSite        *WebSiteEntity
	Breadcrumbs    []string
	FAQs           []FAQItem
	RawJSONLD      []string
}

type ArticleEntity struct {
	Headline      string
	Author        string
	DatePublished time.Time
	DateModified  time.Time
	Publisher     string
	Description   string
}

type OrganizationEntity struct {
	Name string
	URL  string
	Logo string
}

type PersonEntity struct {
	Name string
	URL  string
}

type SoftwareEntity struct {
	Name          string
	OperatingSys  string
	ApplicationCt string
}

type ProductEntity struct {
	Name  string
	Brand string
	Price string
}

type WebSiteEntity struct {
	Name string
	URL  string
}

type FAQItem struct {
	Question string
	Answer   string
}

// DublinCore holds dc.* metadata, present on some documentation/publishing
// sites.
type DublinCore struct {
	Title    string
	Creator  string
	Subject  string
	Date     string
	Language string
}

// DocumentStructure is the derived outline/counts of §4.5.
type DocumentStructure struct {
	Headings         []Heading
	SectionCount     int
	ParagraphCount   int
	LinkCount        int
	ImageCount       int
	TableCount       int
	ListCount        int
	CodeBlockCount   int
	ReadingTimeMin   int
	ComplexityScore  float64
}

// Accessibility is the computed a11y summary of §4.5.
type Accessibility struct {
	AltTextCoverage      float64
	HeadingHierarchyOK   bool
	HasSkipNav           bool
	AriaUsageCount       int
	Score                float64
}

// MetadataBundle aggregates every metadata family of §3.
type MetadataBundle struct {
	Basic         BasicMeta
	OpenGraph     OpenGraph
	Twitter       TwitterCard
	SchemaOrg     SchemaOrg
	DublinCore    DublinCore
	Structure     DocumentStructure
	Accessibility Accessibility
	QualityScore  float64
}

// ContentType tags the coarse classification of §3/§4.6.
type ContentType string

const (
	ContentTypeArticle       ContentType = "article"
	ContentTypeBlog          ContentType = "blog"
	ContentTypeDocumentation ContentType = "documentation"
	ContentTypeProduct       ContentType = "product"
	ContentTypeForum         ContentType = "forum"
	ContentTypeGeneral       ContentType = "general"
)

// QualityInfo is the per-page scoring result of §4.6.
type QualityInfo struct {
	Overall           float64
	ContentType       ContentType
	Language          string
	ReadingMinutes    int
	WordCount         int
	HasPaywall        bool
	RequiresLogin     bool
	AgeRestricted     bool
	ContentHTMLRatio  float64
	AdDensity         float64
	HasStructuredData bool
	HasAuthor         bool
	PublishDate       time.Time
	HasCitations      bool
	IsHTTPS           bool
	LLMSuitability    float64
	EstimatedTokens   int
	NoiseRatio        float64
}

// ExtractedContent is the output of the Extract stage and the input to
// Reconstruct/Chunk (§3).
type ExtractedContent struct {
	SourceURL string
	RawHTML   string
	MainText  string
	Title     string
	Headings  []Heading
	Images    []Image
	Links     []Link
	Metadata  MetadataBundle
	Language  string
	Quality   QualityInfo
}

// ChunkType tags the structural kind of a Chunk (§3).
type ChunkType string

const (
	ChunkTypeText  ChunkType = "text"
	ChunkTypeCode  ChunkType = "code"
	ChunkTypeTable ChunkType = "table"
	ChunkTypeList  ChunkType = "list"
)

// Chunk is a single retrieval-ready unit of text with structural
// provenance (§3). Sequence numbers are dense and 0-based per source URL
// (invariant I1); HeadingPath is a prefix of the document's heading
// hierarchy at the chunk's position (invariant I2).
type Chunk struct {
	ID                string
	Sequence          int
	Content           string
	Type              ChunkType
	SourceURL         string
	HeadingPath       []string
	SectionTitle      string
	Quality           float64
	ParentID          string
	ChildrenIDs       []string
	RelatedImageURLs  []string
	Tags              []string
	ContextDependency float64
	StrategyName      string
	StrategyParams    map[string]string
}
