package export

// Cursor is a write position on the current page, in points from the top
// left corner. Layout functions take a Cursor and return the moved one.
type Cursor struct {
	X, Y float64
}

func (c Cursor) Advance(dy float64) Cursor {
	return Cursor{X: c.X, Y: c.Y + dy}
}

func (c Cursor) Shift(dx float64) Cursor {
	return Cursor{X: c.X + dx, Y: c.Y}
}

// CarriageReturn moves back to the left margin without changing Y.
func (c Cursor) CarriageReturn(left float64) Cursor {
	return Cursor{X: left, Y: c.Y}
}

type PageGeometry struct {
	Width  float64
	Height float64
	Margin float64
}

// A4 portrait in points.
var A4 = PageGeometry{Width: 595.28, Height: 841.89, Margin: 30}

func (g PageGeometry) Origin() Cursor {
	return Cursor{X: g.Margin, Y: g.Margin}
}

func (g PageGeometry) Bottom() float64 {
	return g.Height - g.Margin
}

func (g PageGeometry) ContentWidth() float64 {
	return g.Width - 2*g.Margin
}

type opKind int

const (
	opDocTitle opKind = iota
	opSectionTitle
	opHeaderCell
	opBodyCell
	opPageBreak
)

// drawOp is one positioned text block, or a page break. Section is empty for
// the document title and page breaks.
type drawOp struct {
	Kind    opKind
	Section string
	Text    string
	X, Y    float64
	Width   float64
	Align   string
}

var fontSizes = map[opKind]float64{
	opDocTitle:     18,
	opSectionTitle: 14,
	opHeaderCell:   10,
	opBodyCell:     10,
}

func lineHeight(k opKind) float64 {
	return fontSizes[k] * 1.2
}

// Fixed column widths by header label.
var columnWidths = map[string]float64{
	"Date":        80,
	"Description": 200,
	"Amount":      70,
	"Vendor":      120,
}

const defaultColumnWidth = 100

func columnWidth(header string) float64 {
	if w, ok := columnWidths[header]; ok {
		return w
	}
	return defaultColumnWidth
}

// lineCounter reports how many lines text wraps into at width when set in
// the font of kind.
type lineCounter func(kind opKind, text string, width float64) int

type documentLayout struct {
	page  PageGeometry
	lines lineCounter
	ops   []drawOp
}

// layoutDocument plans the whole document. Sections without rows produce no
// operations at all.
func layoutDocument(sections []Section, page PageGeometry, lines lineCounter) ([]drawOp, error) {
	l := &documentLayout{page: page, lines: lines}

	cur := page.Origin()
	cur = l.block(cur, opDocTitle, "", ReportTitle, page.ContentWidth(), "C")
	cur = cur.Advance(lineHeight(opDocTitle))

	for _, s := range sections {
		cells, err := s.Cells(DocumentPlaceholder)
		if err != nil {
			return nil, err
		}
		if len(cells) == 0 {
			continue
		}

		cur = l.block(cur, opSectionTitle, s.Title, s.Title, page.ContentWidth(), "L")
		cur = cur.Advance(0.5 * lineHeight(opSectionTitle))

		widths := make([]float64, len(s.Columns))
		for i, c := range s.Columns {
			widths[i] = columnWidth(c.Header)
		}

		cur = l.row(cur, opHeaderCell, s.Title, s.Headers(), widths)
		for _, c := range cells {
			cur = l.row(cur, opBodyCell, s.Title, c, widths)
		}
		cur = cur.Advance(lineHeight(opBodyCell))
	}
	return l.ops, nil
}

// block places a single full-width text block and returns the cursor below it.
func (l *documentLayout) block(cur Cursor, kind opKind, section, text string, width float64, align string) Cursor {
	h := float64(max(1, l.lines(kind, text, width))) * lineHeight(kind)
	cur = l.fit(cur, h)
	l.ops = append(l.ops, drawOp{Kind: kind, Section: section, Text: text, X: cur.X, Y: cur.Y, Width: width, Align: align})
	return cur.Advance(h)
}

// row places cells left to right at accumulated column offsets and returns
// the cursor at the left margin below the tallest wrapped cell.
func (l *documentLayout) row(cur Cursor, kind opKind, section string, cells []string, widths []float64) Cursor {
	n := 1
	for i, text := range cells {
		n = max(n, l.lines(kind, text, widths[i]))
	}
	h := float64(n) * lineHeight(kind)

	cur = l.fit(cur, h).CarriageReturn(l.page.Margin)
	for i, text := range cells {
		l.ops = append(l.ops, drawOp{Kind: kind, Section: section, Text: text, X: cur.X, Y: cur.Y, Width: widths[i], Align: "L"})
		cur = cur.Shift(widths[i])
	}
	return cur.CarriageReturn(l.page.Margin).Advance(h)
}

// fit starts a new page when a block of height h would cross the bottom
// margin. A block taller than a whole page is placed anyway.
func (l *documentLayout) fit(cur Cursor, h float64) Cursor {
	origin := l.page.Origin()
	if cur.Y+h <= l.page.Bottom() || cur.Y <= origin.Y {
		return cur
	}
	l.ops = append(l.ops, drawOp{Kind: opPageBreak})
	return origin
}
