package editor

import (
	"strings"

	"folio/api/internal/document"
)

// Form is the flat editing surface for one project. Multi-line fields hold
// newline-delimited text and are split into lists on save.
type Form struct {
	ID       string
	Title    string
	Category string
	Status   string
	Date     string
	Summary  string
	Featured bool
	Content  string

	TechTitle string
	TechItems string

	LinkGithub string
	LinkDemo   string
	LinkPaper  string

	CaseRole             string
	CaseResponsibilities string
	CaseProblem          string
	CaseApproach         string
	CaseImpact           string
	CaseOutcomes         string

	Tabs []TabUnit
}

// TabUnit carries the fields of every media variant side by side; only the
// fields of the selected Type are read on save, the rest are ignored.
type TabUnit struct {
	ID    string
	Label string
	Type  document.MediaType

	VideoID          string
	VideoPlaceholder string

	GalleryMainSrc string
	GalleryMainAlt string
	Thumbs         []ThumbRow

	DiagramSrc     string
	DiagramAlt     string
	DiagramCaption string
}

// ThumbRow is one gallery thumbnail row. Rows missing either image source
// are dropped on save rather than serialized half-empty.
type ThumbRow struct {
	Src     string
	FullSrc string
	Alt     string
}

func formFromProject(p document.Project) Form {
	f := Form{
		ID:       p.ID,
		Title:    p.Title,
		Category: p.Meta.Category,
		Status:   p.Meta.Status,
		Date:     p.Meta.Date,
		Summary:  p.Summary,
		Featured: p.Featured,
		Content:  document.ListToLines(p.Content),
	}
	if p.TechSpecs != nil {
		f.TechTitle = p.TechSpecs.Title
		f.TechItems = document.ListToLines(p.TechSpecs.Items)
	}
	if p.Links != nil {
		f.LinkGithub = p.Links.Github
		f.LinkDemo = p.Links.Demo
		f.LinkPaper = p.Links.Paper
	}
	if p.CaseStudy != nil {
		f.CaseRole = p.CaseStudy.Role
		f.CaseResponsibilities = document.ListToLines(p.CaseStudy.Responsibilities)
		f.CaseProblem = p.CaseStudy.Problem
		f.CaseApproach = p.CaseStudy.Approach
		f.CaseImpact = p.CaseStudy.Impact
		f.CaseOutcomes = document.ListToLines(p.CaseStudy.Outcomes)
	}
	if p.Media != nil {
		for _, tab := range p.Media.Tabs {
			f.Tabs = append(f.Tabs, tabUnitFrom(tab))
		}
	}
	return f
}

func tabUnitFrom(tab document.MediaTab) TabUnit {
	unit := TabUnit{ID: tab.ID, Label: tab.Label, Type: tab.Type}
	switch tab.Type {
	case document.MediaVideo:
		if tab.Video != nil {
			unit.VideoID = tab.Video.VideoID
			unit.VideoPlaceholder = tab.Video.Placeholder
		}
	case document.MediaGallery:
		if tab.Gallery != nil {
			unit.GalleryMainSrc = tab.Gallery.MainImage.Src
			unit.GalleryMainAlt = tab.Gallery.MainImage.Alt
			for _, thumb := range tab.Gallery.Thumbnails {
				unit.Thumbs = append(unit.Thumbs, ThumbRow{
					Src:     thumb.Src,
					FullSrc: thumb.FullSrc,
					Alt:     thumb.Alt,
				})
			}
		}
	case document.MediaDiagram:
		if tab.Diagram != nil {
			unit.DiagramSrc = tab.Diagram.Src
			unit.DiagramAlt = tab.Diagram.Alt
			unit.DiagramCaption = tab.Diagram.Caption
		}
	}
	return unit
}

// collect assembles the form into a project. Optional sections are attached
// only when they carry content, so an untouched section never serializes.
func (f *Form) collect() (document.Project, error) {
	id := document.SanitizeID(f.ID)
	if id == "" {
		return document.Project{}, &ValidationError{Field: "id", Msg: "project id is required"}
	}
	title := strings.TrimSpace(f.Title)
	if title == "" {
		return document.Project{}, &ValidationError{Field: "title", Msg: "project title is required"}
	}

	project := document.Project{
		ID:    id,
		Title: title,
		Meta: document.ProjectMeta{
			Category: strings.TrimSpace(f.Category),
			Status:   strings.TrimSpace(f.Status),
			Date:     strings.TrimSpace(f.Date),
		},
		Summary:  strings.TrimSpace(f.Summary),
		Featured: f.Featured,
		Content:  document.LinesToList(f.Content),
	}

	if tabs, err := f.collectTabs(); err != nil {
		return document.Project{}, err
	} else if len(tabs) > 0 {
		project.Media = &document.Media{Tabs: tabs}
	}

	techItems := document.LinesToList(f.TechItems)
	if strings.TrimSpace(f.TechTitle) != "" || len(techItems) > 0 {
		project.TechSpecs = &document.TechSpecs{
			Title: strings.TrimSpace(f.TechTitle),
			Items: techItems,
		}
	}

	links := document.ProjectLinks{
		Github: strings.TrimSpace(f.LinkGithub),
		Demo:   strings.TrimSpace(f.LinkDemo),
		Paper:  strings.TrimSpace(f.LinkPaper),
	}
	if !links.Empty() {
		project.Links = &links
	}

	caseStudy := document.CaseStudy{
		Role:             strings.TrimSpace(f.CaseRole),
		Responsibilities: document.LinesToList(f.CaseResponsibilities),
		Problem:          strings.TrimSpace(f.CaseProblem),
		Approach:         strings.TrimSpace(f.CaseApproach),
		Impact:           strings.TrimSpace(f.CaseImpact),
		Outcomes:         document.LinesToList(f.CaseOutcomes),
	}
	if !caseStudy.Empty() {
		project.CaseStudy = &caseStudy
	}

	return project, nil
}

func (f *Form) collectTabs() ([]document.MediaTab, error) {
	var tabs []document.MediaTab
	for _, unit := range f.Tabs {
		tab := document.MediaTab{
			ID:    document.SanitizeID(unit.ID),
			Label: strings.TrimSpace(unit.Label),
			Type:  unit.Type,
		}
		if tab.ID == "" {
			tab.ID = unit.Type.DefaultID()
		}
		if tab.Label == "" {
			tab.Label = unit.Type.DefaultLabel()
		}
		switch unit.Type {
		case document.MediaVideo:
			tab.Video = &document.VideoContent{
				VideoID:     strings.TrimSpace(unit.VideoID),
				Placeholder: strings.TrimSpace(unit.VideoPlaceholder),
			}
		case document.MediaGallery:
			gallery := &document.GalleryContent{
				MainImage: document.Image{
					Src: strings.TrimSpace(unit.GalleryMainSrc),
					Alt: strings.TrimSpace(unit.GalleryMainAlt),
				},
				Thumbnails: []document.Thumbnail{},
			}
			for _, row := range unit.Thumbs {
				src := strings.TrimSpace(row.Src)
				fullSrc := strings.TrimSpace(row.FullSrc)
				if src == "" || fullSrc == "" {
					continue
				}
				gallery.Thumbnails = append(gallery.Thumbnails, document.Thumbnail{
					Src:     src,
					FullSrc: fullSrc,
					Alt:     strings.TrimSpace(row.Alt),
				})
			}
			tab.Gallery = gallery
		case document.MediaDiagram:
			tab.Diagram = &document.DiagramContent{
				Src:     strings.TrimSpace(unit.DiagramSrc),
				Alt:     strings.TrimSpace(unit.DiagramAlt),
				Caption: strings.TrimSpace(unit.DiagramCaption),
			}
		default:
			return nil, &ValidationError{Field: "media", Msg: "unknown media tab type " + string(unit.Type)}
		}
		tabs = append(tabs, tab)
	}
	return tabs, nil
}
