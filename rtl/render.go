package rtl

import (
	"embed"
	"fmt"
	"log"
	"strings"
	"text/template"

	"github.com/sarchlab/ramgen/config"
	"github.com/sarchlab/ramgen/ecc"
	"github.com/sarchlab/ramgen/params"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

var funcs = template.FuncMap{
	"add": func(a, b int) int { return a + b },
	"sub": func(a, b int) int { return a - b },
	"mul": func(a, b int) int { return a * b },
	"div": func(a, b int) int { return a / b },
}

var templates = template.Must(
	template.New("rtl").Funcs(funcs).ParseFS(templateFS, "templates/*.tmpl"))

type moduleData struct {
	Name  string
	Title string
	ID    ID
	P     params.Parameters
	F     config.FeatureSet
	ECC   *eccTable
	Shim  *shimData
}

type eccTable struct {
	Masks     []eccMask
	Positions []eccPosition
}

type eccMask struct {
	Index   int
	Literal string
}

type eccPosition struct {
	Syndrome int
	Bit      int
}

type shimData struct {
	Name      string
	Core      string
	Done      string
	Pipelined bool
	ECC       bool
}

// Render produces the module text of generator id. Bus shims are appended
// for Avalon and Wishbone when the module is single-port.
func Render(id ID, p params.Parameters, fs config.FeatureSet) string {
	data := moduleData{
		Name:  id.ModuleName(p.Size),
		Title: id.Title(),
		ID:    id,
		P:     p,
		F:     fs,
	}

	if id == ECC {
		data.ECC = buildECCTable(p)
	}

	var sb strings.Builder

	execute(&sb, id.String()+".tmpl", data)

	if shim := shimTemplate(fs.Bus); shim != "" && id.SupportsShim() {
		data.Shim = &shimData{
			Name:      strings.TrimSuffix(shim, "_shim.tmpl") + "_" + data.Name,
			Core:      data.Name,
			Done:      id.DoneSignal(),
			Pipelined: id == Pipelined,
			ECC:       id == ECC,
		}

		sb.WriteString("\n")
		execute(&sb, shim, data)
	}

	return sb.String()
}

// ShimName returns the name of the bus wrapper Render appends, or "" when
// there is none.
func ShimName(id ID, p params.Parameters, fs config.FeatureSet) string {
	shim := shimTemplate(fs.Bus)
	if shim == "" || !id.SupportsShim() {
		return ""
	}

	return strings.TrimSuffix(shim, "_shim.tmpl") + "_" + id.ModuleName(p.Size)
}

func shimTemplate(bus config.BusInterface) string {
	switch bus {
	case config.BusAvalon:
		return "avalon_shim.tmpl"
	case config.BusWishbone:
		return "wishbone_shim.tmpl"
	default:
		return ""
	}
}

func execute(sb *strings.Builder, name string, data moduleData) {
	if err := templates.ExecuteTemplate(sb, name, data); err != nil {
		log.Panicf("rtl: rendering %s: %v", name, err)
	}
}

func buildECCTable(p params.Parameters) *eccTable {
	codec := ecc.NewCodec(p.DataWidth)
	if codec.CheckBits() != p.ECCWidth {
		log.Panicf("rtl: codec uses %d check bits, parameters say %d",
			codec.CheckBits(), p.ECCWidth)
	}

	t := &eccTable{}

	for i, m := range codec.Masks() {
		t.Masks = append(t.Masks, eccMask{
			Index:   i,
			Literal: fmt.Sprintf("%d'h%0*X", p.DataWidth, (p.DataWidth+3)/4, m),
		})
	}

	for bit, pos := range codec.Positions() {
		t.Positions = append(t.Positions, eccPosition{Syndrome: pos, Bit: bit})
	}

	return t
}
