// File: internal/services/resources/resources.go
package resources

type Resource struct {
	ID       int    `json:"id"`
	Title    string `json:"title"`
	Type     string `json:"type"`
	Category string `json:"category"`
	URL      string `json:"url"`
}

var catalog = []Resource{
	{ID: 1, Title: "5-Minute Box Breathing", Type: "video", Category: "Anxiety", URL: "#"},
	{ID: 2, Title: "Understanding Burnout", Type: "article", Category: "Stress", URL: "#"},
	{ID: 3, Title: "Sleep Hygiene 101", Type: "audio", Category: "Sleep", URL: "#"},
	{ID: 4, Title: "Grounding Techniques", Type: "video", Category: "Panic", URL: "#"},
}

// List returns a copy of the fixed resource catalog.
func List() []Resource {
	out := make([]Resource, len(catalog))
	copy(out, catalog)
	return out
}
