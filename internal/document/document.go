// Package document defines the personal-site configuration document: the
// single aggregate that the synchronizer owns and every editor mutates.
package document

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Document is the root configuration aggregate. All sub-entities are owned
// by it with value semantics; cloning the document clones everything.
type Document struct {
	PersonalInfo PersonalInfo     `json:"personalInfo"`
	About        *About           `json:"about,omitempty"`
	Navigation   []NavItem        `json:"navigation"`
	Sidebar      Sidebar          `json:"sidebar"`
	Projects     []Project        `json:"projects"`
	OpenSource   []OpenSourceRepo `json:"openSource"`
	Academics    Academics        `json:"academics"`
	Blog         Blog             `json:"blog"`
	Settings     Settings         `json:"settings"`
}

type PersonalInfo struct {
	Name          string `json:"name"`
	Title         string `json:"title"`
	MediumProfile string `json:"mediumProfile"`
	GithubProfile string `json:"githubProfile"`
	UpdatedLabel  string `json:"updatedLabel"`
	DefaultTheme  string `json:"defaultTheme"`
}

type About struct {
	Tagline      string `json:"tagline"`
	Bio          string `json:"bio"`
	Photo        Image  `json:"photo"`
	CTA          Link   `json:"cta"`
	PersonJSONLD bool   `json:"personJSONLD"`
}

type Image struct {
	Src string `json:"src"`
	Alt string `json:"alt"`
}

type Link struct {
	Label string `json:"label"`
	URL   string `json:"url"`
}

type NavItem struct {
	Label string `json:"label"`
	Href  string `json:"href"`
}

type Sidebar struct {
	Updates        []Update        `json:"updates"`
	SkillsSections []SkillsSection `json:"skillsSections"`
	QuickLinks     []Link          `json:"quickLinks"`
}

type Update struct {
	Date string `json:"date"`
	Text string `json:"text"`
}

type SkillsSection struct {
	Title string   `json:"title"`
	Items []string `json:"items"`
}

type OpenSourceRepo struct {
	Name               string   `json:"name"`
	RepoURL            string   `json:"repoUrl"`
	DemoURL            string   `json:"demoUrl"`
	License            string   `json:"license"`
	Blurb              string   `json:"blurb"`
	GoodFirstIssuesURL string   `json:"goodFirstIssuesUrl"`
	Tags               []string `json:"tags"`
}

type Academics struct {
	Education   []EducationEntry  `json:"education"`
	Exams       []ExamEntry       `json:"exams"`
	Internships []InternshipEntry `json:"internships"`
}

type EducationEntry struct {
	Institution string   `json:"institution"`
	Degree      string   `json:"degree"`
	Field       string   `json:"field"`
	Period      string   `json:"period"`
	Grade       string   `json:"grade"`
	Highlights  []string `json:"highlights"`
}

type ExamEntry struct {
	Name  string `json:"name"`
	Score string `json:"score"`
	Year  string `json:"year"`
	Notes string `json:"notes"`
}

type InternshipEntry struct {
	Company string   `json:"company"`
	Role    string   `json:"role"`
	Period  string   `json:"period"`
	Bullets []string `json:"bullets"`
}

type Blog struct {
	ShowOnHomepage bool             `json:"showOnHomepage"`
	Mode           string           `json:"mode"`
	CacheMinutes   int              `json:"cacheMinutes"`
	ManualPosts    []ManualPostRef  `json:"manualPosts"`
	Normalized     []NormalizedPost `json:"normalized"`
	Taxonomy       Taxonomy         `json:"taxonomy"`
}

// ManualPostRef is one curated blog entry. URL is the natural key for the
// fetch batch; an entry with a blank URL stays editable but is never fetched.
type ManualPostRef struct {
	URL       string        `json:"url"`
	Category  string        `json:"category"`
	Pinned    bool          `json:"pinned"`
	Overrides PostOverrides `json:"overrides"`
}

type PostOverrides struct {
	Title   string `json:"title,omitempty"`
	Summary string `json:"summary,omitempty"`
	Image   string `json:"image,omitempty"`
	Date    string `json:"date,omitempty"`
}

// NormalizedPost is the derived feed entry. The whole Normalized list is
// replaced on every successful normalization run, never patched in place.
type NormalizedPost struct {
	URL         string   `json:"url"`
	Title       string   `json:"title"`
	Summary     string   `json:"summary"`
	Image       string   `json:"image"`
	Date        string   `json:"date"`
	ReadMinutes int      `json:"readMinutes"`
	Tags        []string `json:"tags"`
	Category    string   `json:"category,omitempty"`
	Pinned      bool     `json:"pinned,omitempty"`
}

type Taxonomy struct {
	Categories     []string `json:"categories"`
	TagSuggestions []string `json:"tagSuggestions"`
	Series         []Series `json:"series"`
}

type Series struct {
	ID    string   `json:"id"`
	Title string   `json:"title"`
	Items []string `json:"items"`
}

type Settings struct {
	Accessibility Accessibility `json:"accessibility"`
	Performance   Performance   `json:"performance"`
}

type Accessibility struct {
	SkipLinkLabel     string `json:"skipLinkLabel"`
	ForceFocusVisible bool   `json:"forceFocusVisible"`
	MinContrastAA     bool   `json:"minContrastAA"`
	RequireCaptions   bool   `json:"requireCaptions"`
}

type Performance struct {
	LazyLoadImagesDefault   bool `json:"lazyLoadImagesDefault"`
	ResponsiveImagesDefault bool `json:"responsiveImagesDefault"`
	MaxImageWidth           int  `json:"maxImageWidth"`
	DeferNonCriticalJS      bool `json:"deferNonCriticalJS"`
}

// Default returns the base document served when nothing has been stored yet.
func Default() *Document {
	return &Document{
		PersonalInfo: PersonalInfo{DefaultTheme: "light"},
		About: &About{
			PersonJSONLD: true,
		},
		Navigation: []NavItem{},
		Sidebar: Sidebar{
			Updates:        []Update{},
			SkillsSections: []SkillsSection{},
			QuickLinks:     []Link{},
		},
		Projects:   []Project{},
		OpenSource: []OpenSourceRepo{},
		Academics: Academics{
			Education:   []EducationEntry{},
			Exams:       []ExamEntry{},
			Internships: []InternshipEntry{},
		},
		Blog: Blog{
			ShowOnHomepage: true,
			Mode:           "manual",
			CacheMinutes:   15,
			ManualPosts:    []ManualPostRef{},
			Normalized:     []NormalizedPost{},
			Taxonomy: Taxonomy{
				Categories:     []string{},
				TagSuggestions: []string{},
				Series:         []Series{},
			},
		},
		Settings: Settings{
			Accessibility: Accessibility{
				SkipLinkLabel:     "Skip to content",
				ForceFocusVisible: true,
				MinContrastAA:     true,
			},
			Performance: Performance{
				LazyLoadImagesDefault:   true,
				ResponsiveImagesDefault: true,
				MaxImageWidth:           2560,
				DeferNonCriticalJS:      true,
			},
		},
	}
}

// Clone returns a deep copy of the document. The working copy and its
// borrowed views never share sub-entity storage.
func (d *Document) Clone() *Document {
	raw, err := json.Marshal(d)
	if err != nil {
		// Document contains only marshalable fields; this cannot happen
		// for a document that was itself decoded from JSON.
		panic(fmt.Sprintf("document: clone marshal: %v", err))
	}
	var out Document
	if err := json.Unmarshal(raw, &out); err != nil {
		panic(fmt.Sprintf("document: clone unmarshal: %v", err))
	}
	return &out
}

// Decode parses raw bytes into a Document. Unknown media tab types and
// malformed JSON are decode errors; callers must not apply partial results.
func Decode(raw []byte) (*Document, error) {
	var doc Document
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("decode document: %w", err)
	}
	doc.applyDefaults()
	return &doc, nil
}

// applyDefaults fills field-level fallbacks: a navigation entry with a blank
// href points at a placeholder anchor rather than serializing empty.
func (d *Document) applyDefaults() {
	for i := range d.Navigation {
		if strings.TrimSpace(d.Navigation[i].Href) == "" {
			d.Navigation[i].Href = "#"
		}
	}
}

// Encode serializes the document for the draft slot and the remote store.
func (d *Document) Encode() ([]byte, error) {
	raw, err := json.MarshalIndent(d, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode document: %w", err)
	}
	return raw, nil
}

// CheckShape is the advisory client-side check: personalInfo must be present
// and projects must be an array. The remote store is the authority.
func CheckShape(raw []byte) error {
	var probe struct {
		PersonalInfo *json.RawMessage `json:"personalInfo"`
		Projects     *json.RawMessage `json:"projects"`
	}
	if err := json.Unmarshal(raw, &probe); err != nil {
		return fmt.Errorf("parse document: %w", err)
	}
	if probe.PersonalInfo == nil {
		return fmt.Errorf("missing personalInfo")
	}
	if probe.Projects == nil {
		return fmt.Errorf("missing projects")
	}
	var projects []json.RawMessage
	if err := json.Unmarshal(*probe.Projects, &projects); err != nil {
		return fmt.Errorf("projects must be an array")
	}
	return nil
}
