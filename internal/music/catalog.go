package music

// Labels the settings matcher may choose from.
const (
	LabelAmbient   = "ambient"
	LabelCheerful  = "cheerful"
	LabelCinematic = "cinematic"
	LabelLullaby   = "lullaby"
	LabelNone      = "none"
)

// DefaultFiles is offered when the server's listing cannot be fetched.
var DefaultFiles = []string{
	"ambient-background-2-421085.mp3",
	"cheerful-joyful-playful-music-380550.mp3",
	"cinematic-ambient-348342.mp3",
	"lullaby-acoustic-guitar-438657.mp3",
}

// Catalog maps mood labels to track files.
type Catalog struct {
	byLabel map[string]string
	labels  []string
}

func DefaultCatalog() *Catalog {
	return NewCatalog(map[string]string{
		LabelAmbient:   DefaultFiles[0],
		LabelCheerful:  DefaultFiles[1],
		LabelCinematic: DefaultFiles[2],
		LabelLullaby:   DefaultFiles[3],
	})
}

// NewCatalog builds a catalog; LabelNone is always present and maps to "".
func NewCatalog(files map[string]string) *Catalog {
	c := &Catalog{byLabel: map[string]string{LabelNone: ""}}
	for _, l := range []string{LabelAmbient, LabelCheerful, LabelCinematic, LabelLullaby} {
		if f, ok := files[l]; ok {
			c.byLabel[l] = f
			c.labels = append(c.labels, l)
		}
	}
	for l, f := range files {
		if _, ok := c.byLabel[l]; !ok {
			c.byLabel[l] = f
			c.labels = append(c.labels, l)
		}
	}
	c.labels = append(c.labels, LabelNone)
	return c
}

// Labels in presentation order, "none" last.
func (c *Catalog) Labels() []string {
	return append([]string(nil), c.labels...)
}

// File returns the track for a label; "none" yields "" with ok true.
func (c *Catalog) File(label string) (string, bool) {
	f, ok := c.byLabel[label]
	return f, ok
}

// Label is the reverse lookup. Unknown files report "none".
func (c *Catalog) Label(file string) string {
	if file == "" {
		return LabelNone
	}
	for l, f := range c.byLabel {
		if f == file {
			return l
		}
	}
	return LabelNone
}
