package ir

import (
	"bytes"
	"encoding/json"
	"fmt"
	"image"
	"image/png"

	"github.com/google/uuid"
)

// imageNamespace scopes the name-based image IDs.
var imageNamespace = uuid.MustParse("6b6f696d-706f-5274-8000-696d61676573")

// ImageBlock is an image stored in a document's image collection.
type ImageBlock struct {
	ID     string `json:"id" yaml:"id"`
	Alt    string `json:"alt,omitempty" yaml:"alt,omitempty"`
	Width  int    `json:"width,omitempty" yaml:"width,omitempty"`
	Height int    `json:"height,omitempty" yaml:"height,omitempty"`
	Format string `json:"format,omitempty" yaml:"format,omitempty"`
	Data   []byte `json:"data,omitempty" yaml:"data,omitempty"`
}

// NewImage creates a new image block with the given ID.
func NewImage(id string) *ImageBlock {
	return &ImageBlock{
		ID: id,
	}
}

// SetDimensions sets the width and height of the image.
func (img *ImageBlock) SetDimensions(width, height int) {
	img.Width = width
	img.Height = height
}

// HasData returns true if the image has raw data loaded.
func (img *ImageBlock) HasData() bool {
	return len(img.Data) > 0
}

// ImageCollection stores a document's images, keyed by a content derived ID.
// Adding identical pixels twice yields the same entry.
type ImageCollection struct {
	items map[string]*ImageBlock
	order []string
}

// NewImageCollection creates an empty collection.
func NewImageCollection() *ImageCollection {
	return &ImageCollection{items: make(map[string]*ImageBlock)}
}

// Add encodes img as PNG and stores it. It returns the stored block.
func (c *ImageCollection) Add(img image.Image) (*ImageBlock, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("failed to encode image: %w", err)
	}
	data := buf.Bytes()
	id := uuid.NewSHA1(imageNamespace, data).String()
	if b, ok := c.items[id]; ok {
		return b, nil
	}

	b := NewImage(id)
	b.Format = "png"
	b.Data = data
	bounds := img.Bounds()
	b.SetDimensions(bounds.Dx(), bounds.Dy())

	c.items[id] = b
	c.order = append(c.order, id)
	return b, nil
}

// Get returns the image with the given ID.
func (c *ImageCollection) Get(id string) (*ImageBlock, bool) {
	b, ok := c.items[id]
	return b, ok
}

// Len returns the number of stored images.
func (c *ImageCollection) Len() int {
	return len(c.order)
}

// All returns the stored images in insertion order.
func (c *ImageCollection) All() []*ImageBlock {
	out := make([]*ImageBlock, 0, len(c.order))
	for _, id := range c.order {
		out = append(out, c.items[id])
	}
	return out
}

// MarshalJSON encodes the collection as a list.
func (c *ImageCollection) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.All())
}

// MarshalYAML encodes the collection as a list.
func (c *ImageCollection) MarshalYAML() (any, error) {
	return c.All(), nil
}
