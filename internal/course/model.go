package course

// Kind names the three unit flavours a vertical can carry.
type Kind string

const (
	KindHTML    Kind = "html"
	KindVideo   Kind = "video"
	KindProblem Kind = "problem"
)

// Unit is the classification of one unit file. Implementations are
// HTMLUnit, VideoUnit and ProblemUnit; switch on the concrete type.
type Unit interface {
	Kind() Kind
	Title() string
	isUnit()
}

// HTMLUnit is rendered as a single html component. Body is the full unit
// text, metadata marker included when one was present but unrecognised.
type HTMLUnit struct {
	Heading string
	Body    string
}

func (HTMLUnit) Kind() Kind      { return KindHTML }
func (u HTMLUnit) Title() string { return u.Heading }
func (HTMLUnit) isUnit()         {}

// VideoUnit pairs an externally hosted video with an html companion built
// from Body. Ref is the hosting platform's video id.
type VideoUnit struct {
	Heading string
	Ref     string
	Body    string
}

func (VideoUnit) Kind() Kind      { return KindVideo }
func (u VideoUnit) Title() string { return u.Heading }
func (VideoUnit) isUnit()         {}

// ProblemUnit carries the <problem> blocks extracted from the unit text, in
// source order, byte for byte.
type ProblemUnit struct {
	Heading   string
	Fragments []string
}

func (ProblemUnit) Kind() Kind      { return KindProblem }
func (u ProblemUnit) Title() string { return u.Heading }
func (ProblemUnit) isUnit()         {}

// Payload is the component set a vertical references.
type Payload interface {
	isPayload()
}

type HTMLPayload struct {
	HTMLID string
}

type VideoPayload struct {
	VideoID     string
	HTMLID      string
	ExternalRef string
}

type ProblemPayload struct {
	ItemIDs []string
}

func (HTMLPayload) isPayload()    {}
func (VideoPayload) isPayload()   {}
func (ProblemPayload) isPayload() {}

// Attr is a single XML attribute in document order.
type Attr struct {
	Name  string
	Value string
}

// Element is an attribute-only XML element such as the root <course> node.
type Element struct {
	Name  string
	Attrs []Attr
}

// Attr returns the value of name and whether it was present.
func (e Element) Attr(name string) (string, bool) {
	for _, attr := range e.Attrs {
		if attr.Name == name {
			return attr.Value, true
		}
	}
	return "", false
}

// Vertical is one learner facing screen.
type Vertical struct {
	ID      string
	Title   string
	Source  string
	Payload Payload
}

// Sequential groups the verticals of one section directory.
type Sequential struct {
	ID        string
	Title     string
	Dir       string
	Graded    bool
	Verticals []Vertical
}

// Chapter maps to one top level source directory.
type Chapter struct {
	ID          string
	Title       string
	Dir         string
	AssetPrefix string
	Sequentials []Sequential
}

// Tree records the structure of a compiled course. Content is written out
// as soon as a node completes and is not retained here.
type Tree struct {
	Root      Element
	Structure Element
	Chapters  []Chapter
}

// Counts tallies nodes per kind.
type Counts struct {
	Chapters    int
	Sequentials int
	Verticals   int
	HTML        int
	Videos      int
	Problems    int
}

// Counts walks the tree and tallies every emitted node.
func (t *Tree) Counts() Counts {
	var c Counts
	if t == nil {
		return c
	}
	for _, chapter := range t.Chapters {
		c.Chapters++
		for _, seq := range chapter.Sequentials {
			c.Sequentials++
			for _, vertical := range seq.Verticals {
				c.Verticals++
				switch p := vertical.Payload.(type) {
				case HTMLPayload:
					c.HTML++
				case VideoPayload:
					c.Videos++
					c.HTML++
				case ProblemPayload:
					c.Problems += len(p.ItemIDs)
				}
			}
		}
	}
	return c
}
