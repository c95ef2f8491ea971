// Package ir defines the Intermediate Representation for imported drawings.
// IR is the output of the import filters and the input for serialization and
// the optional LLM description stage.
package ir

import "fmt"

// Unit is the measurement unit of a document's page and shape coordinates.
type Unit string

const (
	UnitPoint      Unit = "pt"
	UnitMillimeter Unit = "mm"
)

// Size is a width/height pair in document units.
type Size struct {
	Width  float64 `json:"width" yaml:"width"`
	Height float64 `json:"height" yaml:"height"`
}

// Document represents the intermediate representation of a drawing.
type Document struct {
	Version  string           `json:"version" yaml:"version"`
	Metadata Metadata         `json:"metadata" yaml:"metadata"`
	Unit     Unit             `json:"unit" yaml:"unit"`
	Page     Size             `json:"page" yaml:"page"`
	Groups   []*Layer         `json:"layers" yaml:"layers"`
	Content  []*Shape         `json:"shapes" yaml:"shapes"`
	Media    *ImageCollection `json:"images,omitempty" yaml:"images,omitempty"`
}

// Metadata contains document metadata.
type Metadata struct {
	Title       string `json:"title,omitempty" yaml:"title,omitempty"`
	Creator     string `json:"creator,omitempty" yaml:"creator,omitempty"`
	Source      string `json:"source,omitempty" yaml:"source,omitempty"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
}

// Layer groups shapes that share a stacking context.
type Layer struct {
	Name   string `json:"name" yaml:"name"`
	ZIndex int    `json:"z_index" yaml:"z_index"`

	children []*Shape
}

// NewLayer creates an empty layer.
func NewLayer(name string) *Layer {
	return &Layer{Name: name}
}

// Attach makes the layer the parent of s.
func (l *Layer) Attach(s *Shape) {
	s.Parent = l.Name
	l.children = append(l.children, s)
}

// Children returns the shapes attached to the layer, in attach order.
func (l *Layer) Children() []*Shape {
	return l.children
}

// NewDocument creates a new IR document with the current version.
func NewDocument() *Document {
	return &Document{
		Version: "1.0",
		Unit:    UnitPoint,
		Content: make([]*Shape, 0),
		Media:   NewImageCollection(),
	}
}

// Layers returns the document's layers in insertion order.
func (d *Document) Layers() []*Layer {
	return d.Groups
}

// InsertLayer appends a layer to the document.
func (d *Document) InsertLayer(l *Layer) {
	if l.ZIndex == 0 && len(d.Groups) > 0 {
		l.ZIndex = d.Groups[len(d.Groups)-1].ZIndex + 1
	}
	d.Groups = append(d.Groups, l)
}

// Layer returns the layer with the given name.
func (d *Document) Layer(name string) (*Layer, error) {
	for _, l := range d.Groups {
		if l.Name == name {
			return l, nil
		}
	}
	return nil, fmt.Errorf("layer not found: %s", name)
}

// Add hands a shape over to the document. The caller must not modify the
// shape afterwards.
func (d *Document) Add(s *Shape) {
	d.Content = append(d.Content, s)
}

// Shapes returns all shapes in creation order.
func (d *Document) Shapes() []*Shape {
	return d.Content
}

// PageSize returns the page size in document units.
func (d *Document) PageSize() Size {
	return d.Page
}

// SetPageSize sets the page size in document units.
func (d *Document) SetPageSize(s Size) {
	d.Page = s
}

// SetUnit sets the document measurement unit.
func (d *Document) SetUnit(u Unit) {
	d.Unit = u
}

// Images returns the document's image collection.
func (d *Document) Images() *ImageCollection {
	if d.Media == nil {
		d.Media = NewImageCollection()
	}
	return d.Media
}
