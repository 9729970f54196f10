// Package catalog resolves product metadata (name, category, description)
// by EAN code. The Resolver interface is the capability the rest of the
// service depends on; StaticResolver ships a built-in medicine table and
// can be swapped for a real external source without touching callers.
package catalog

import (
	"context"
	"sort"
	"strings"
)

// Entry is the metadata known about a catalog product
type Entry struct {
	Code        string `json:"code"`
	Name        string `json:"name"`
	Category    string `json:"category"`
	Description string `json:"description"`
}

// Resolver looks up product metadata by code and free-text query.
// Resolve returns nil (not an error) when the code is unknown.
type Resolver interface {
	Resolve(ctx context.Context, code string) (*Entry, error)
	Search(ctx context.Context, query string) ([]Entry, error)
}

// minQueryLength guards Search against one- and two-character queries
const minQueryLength = 3

// StaticResolver resolves against the built-in medicine table
type StaticResolver struct {
	entries map[string]Entry
}

// NewStaticResolver creates a resolver over the built-in table
func NewStaticResolver() *StaticResolver {
	return &StaticResolver{entries: medicineTable}
}

// Resolve returns the catalog entry for a code, or nil when unknown
func (r *StaticResolver) Resolve(_ context.Context, code string) (*Entry, error) {
	entry, ok := r.entries[code]
	if !ok {
		return nil, nil
	}
	return &entry, nil
}

// Search matches the query against name, code and category,
// case-insensitively. Queries shorter than three characters return nothing.
func (r *StaticResolver) Search(_ context.Context, query string) ([]Entry, error) {
	if len(query) < minQueryLength {
		return []Entry{}, nil
	}

	lower := strings.ToLower(query)

	var results []Entry
	for code, entry := range r.entries {
		if strings.Contains(strings.ToLower(entry.Name), lower) ||
			strings.Contains(code, query) ||
			strings.Contains(strings.ToLower(entry.Category), lower) {
			results = append(results, entry)
		}
	}

	// Map iteration order is random; callers expect stable output.
	sort.Slice(results, func(i, j int) bool { return results[i].Code < results[j].Code })

	return results, nil
}

// medicineTable holds the top-selling Brazilian pharmacy products, keyed
// by EAN barcode.
var medicineTable = map[string]Entry{
	// Analgesics and muscle relaxants
	"7891058001421": {Code: "7891058001421", Name: "Neosaldina 30 Drágeas", Category: "Analgésico", Description: "Dipirona + Isometepteno + Cafeína"},
	"7896006200021": {Code: "7896006200021", Name: "Dorflex 36 Comprimidos", Category: "Relaxante Muscular", Description: "Dipirona + Citrato de Orfenadrina + Cafeína"},
	"7897595603706": {Code: "7897595603706", Name: "Torsilax 30 Comprimidos", Category: "Anti-inflamatório", Description: "Diclofenaco + Carisoprodol + Paracetamol + Cafeína"},
	"7891058022068": {Code: "7891058022068", Name: "Buscopan Composto", Category: "Antiespasmódico", Description: "Butilbrometo de escopolamina + Dipirona"},
	"7896094920217": {Code: "7896094920217", Name: "Advil 400mg", Category: "Analgésico", Description: "Ibuprofeno"},
	"7891142122116": {Code: "7891142122116", Name: "Tylenol 750mg", Category: "Analgésico", Description: "Paracetamol"},
	"7896006262510": {Code: "7896006262510", Name: "Brometo de Ipratrópio 0,25mg", Category: "Asma", Description: "Genérico"},

	// Continuous use
	"7896181901747": {Code: "7896181901747", Name: "Besilato de Anlodipino 5mg", Category: "Hipertensão", Description: "Genérico Medley"},
	"7896202520513": {Code: "7896202520513", Name: "Captopril 25mg", Category: "Hipertensão", Description: "Genérico"},
	"7899620911031": {Code: "7899620911031", Name: "Sinvastatina 20mg", Category: "Colesterol", Description: "Genérico"},
	"7896112137030": {Code: "7896112137030", Name: "Sulfato de Salbutamol 100mcg", Category: "Asma", Description: "Aerossol"},
	"7896672202872": {Code: "7896672202872", Name: "Dipropionato de Beclometasona 200mcg", Category: "Asma", Description: "Spray"},
	"7891045008433": {Code: "7891045008433", Name: "Ciclo 21", Category: "Anticoncepcional", Description: "Levonorgestrel + Etinilestradiol"},

	// Other common products
	"7891010570026": {Code: "7891010570026", Name: "Rivotril 2mg", Category: "Controlado", Description: "Clonazepam (Tarja Preta)"},
	"7896094200630": {Code: "7896094200630", Name: "Allegra 120mg", Category: "Antialérgico", Description: "Cloridrato de Fexofenadina"},
	"7896658033469": {Code: "7896658033469", Name: "Omeprazol 20mg", Category: "Gástrico", Description: "Cápsulas"},
}
