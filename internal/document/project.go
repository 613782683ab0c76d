package document

import (
	"encoding/json"
	"fmt"
)

// Project is one portfolio entry. Optional sections are pointers: an
// all-empty section is omitted from the serialized document entirely.
type Project struct {
	ID        string        `json:"id"`
	Title     string        `json:"title"`
	Meta      ProjectMeta   `json:"meta"`
	Summary   string        `json:"summary"`
	Featured  bool          `json:"featured"`
	Content   []string      `json:"content"`
	Media     *Media        `json:"media,omitempty"`
	TechSpecs *TechSpecs    `json:"techSpecs,omitempty"`
	Links     *ProjectLinks `json:"links,omitempty"`
	CaseStudy *CaseStudy    `json:"caseStudy,omitempty"`
}

type ProjectMeta struct {
	Category string `json:"category"`
	Status   string `json:"status"`
	Date     string `json:"date"`
}

type Media struct {
	Tabs []MediaTab `json:"tabs"`
}

type TechSpecs struct {
	Title string   `json:"title"`
	Items []string `json:"items"`
}

// ProjectLinks serializes only the keys that are set.
type ProjectLinks struct {
	Github string `json:"github,omitempty"`
	Demo   string `json:"demo,omitempty"`
	Paper  string `json:"paper,omitempty"`
}

func (l ProjectLinks) Empty() bool {
	return l.Github == "" && l.Demo == "" && l.Paper == ""
}

type CaseStudy struct {
	Role             string   `json:"role"`
	Responsibilities []string `json:"responsibilities"`
	Problem          string   `json:"problem"`
	Approach         string   `json:"approach"`
	Impact           string   `json:"impact"`
	Outcomes         []string `json:"outcomes"`
}

func (c CaseStudy) Empty() bool {
	return c.Role == "" && len(c.Responsibilities) == 0 && c.Problem == "" &&
		c.Approach == "" && c.Impact == "" && len(c.Outcomes) == 0
}

// Validate enforces the save-boundary invariant: a project without an id or
// without a title is rejected, never silently dropped.
func (p *Project) Validate() error {
	if p.ID == "" {
		return fmt.Errorf("project id is required")
	}
	if p.Title == "" {
		return fmt.Errorf("project title is required")
	}
	return nil
}

// MediaType tags the MediaTab union.
type MediaType string

const (
	MediaVideo   MediaType = "video"
	MediaGallery MediaType = "gallery"
	MediaDiagram MediaType = "diagram"
)

// DefaultID returns the per-type fallback tab id.
func (t MediaType) DefaultID() string {
	switch t {
	case MediaVideo:
		return "demo"
	case MediaGallery:
		return "gallery"
	case MediaDiagram:
		return "architecture"
	}
	return ""
}

// DefaultLabel returns the per-type fallback tab label.
func (t MediaType) DefaultLabel() string {
	switch t {
	case MediaVideo:
		return "Demo Video"
	case MediaGallery:
		return "Screenshots"
	case MediaDiagram:
		return "Architecture"
	}
	return ""
}

// MediaTab is a tagged union over Type. Exactly one of the variant pointers
// is set; the content shape on the wire depends on the tag.
type MediaTab struct {
	ID    string
	Label string
	Type  MediaType

	Video   *VideoContent
	Gallery *GalleryContent
	Diagram *DiagramContent
}

type VideoContent struct {
	VideoID     string `json:"videoId"`
	Placeholder string `json:"placeholder"`
}

type GalleryContent struct {
	MainImage  Image       `json:"mainImage"`
	Thumbnails []Thumbnail `json:"thumbnails"`
}

type Thumbnail struct {
	Src     string `json:"src"`
	FullSrc string `json:"fullSrc"`
	Alt     string `json:"alt"`
}

type DiagramContent struct {
	Src     string `json:"src"`
	Alt     string `json:"alt"`
	Caption string `json:"caption"`
}

type mediaTabWire struct {
	ID      string          `json:"id"`
	Label   string          `json:"label"`
	Type    MediaType       `json:"type"`
	Content json.RawMessage `json:"content"`
}

func (t MediaTab) MarshalJSON() ([]byte, error) {
	wire := mediaTabWire{ID: t.ID, Label: t.Label, Type: t.Type}
	var content any
	switch t.Type {
	case MediaVideo:
		content = t.Video
	case MediaGallery:
		content = t.Gallery
	case MediaDiagram:
		content = t.Diagram
	default:
		return nil, fmt.Errorf("media tab %q: unknown type %q", t.ID, t.Type)
	}
	if content == nil {
		return nil, fmt.Errorf("media tab %q: missing %s content", t.ID, t.Type)
	}
	raw, err := json.Marshal(content)
	if err != nil {
		return nil, err
	}
	wire.Content = raw
	return json.Marshal(wire)
}

func (t *MediaTab) UnmarshalJSON(raw []byte) error {
	var wire mediaTabWire
	if err := json.Unmarshal(raw, &wire); err != nil {
		return err
	}
	out := MediaTab{ID: wire.ID, Label: wire.Label, Type: wire.Type}
	switch wire.Type {
	case MediaVideo:
		out.Video = &VideoContent{}
		if len(wire.Content) > 0 {
			if err := json.Unmarshal(wire.Content, out.Video); err != nil {
				return fmt.Errorf("media tab %q: %w", wire.ID, err)
			}
		}
	case MediaGallery:
		out.Gallery = &GalleryContent{}
		if len(wire.Content) > 0 {
			if err := json.Unmarshal(wire.Content, out.Gallery); err != nil {
				return fmt.Errorf("media tab %q: %w", wire.ID, err)
			}
		}
	case MediaDiagram:
		out.Diagram = &DiagramContent{}
		if len(wire.Content) > 0 {
			if err := json.Unmarshal(wire.Content, out.Diagram); err != nil {
				return fmt.Errorf("media tab %q: %w", wire.ID, err)
			}
		}
	default:
		return fmt.Errorf("media tab %q: unknown type %q", wire.ID, wire.Type)
	}
	*t = out
	return nil
}
