package external

import (
	"strings"

	"github.com/docviz/docviz/pkg/graphson"
)

// Extra vertex properties attached to merged external vertices.
const (
	PropExternalProject     = "is_external_project"
	PropExternalProjectName = "external_project_name"
	PropHasHomeConnection   = "has_home_connection"
)

// Merge folds an external project's exported graph into the home document.
//
// The merge offsets all external vertex IDs past the home ID range, imports
// only the external project's internal pages (its own external references
// are dropped), rewrites their relative paths to absolute URLs under base,
// and assigns every imported vertex to a synthetic "<project> (external)"
// cluster regardless of the project's own cluster structure.
//
// Home intersphinx stub vertices whose URL matches an imported page are
// removed, and edges pointing at a removed stub are redirected to the real
// external vertex. Imported vertices reachable from the home project are
// flagged with has_home_connection so the viewer can fade the rest.
func Merge(home graphson.Document, ext graphson.Document, project, base string) graphson.Document {
	base = strings.TrimSuffix(base, "/")

	offset := 0
	for _, v := range home.Vertices {
		if v.ID >= offset {
			offset = v.ID + 1
		}
	}

	// Home stub URLs that point into this project, with and without fragment.
	stubTargets := make(map[string]bool)
	for _, v := range home.Vertices {
		if !isStub(v) {
			continue
		}
		url, _ := v.Properties[graphson.PropPath].(string)
		if covered(url, base) {
			stubTargets[url] = true
			stubTargets[stripFragment(url)] = true
		}
	}

	merged := graphson.Document{
		Vertices: append([]graphson.Vertex(nil), home.Vertices...),
		Edges:    append([]graphson.Edge(nil), home.Edges...),
		Clusters: home.Clusters,
		Meta:     home.Meta,
	}

	// Import the external project's internal pages.
	urlToID := make(map[string]int)
	imported := make(map[int]bool) // external IDs that were kept
	for _, v := range ext.Vertices {
		if isStub(v) {
			continue
		}
		newID := v.ID + offset
		imported[v.ID] = true

		name, _ := v.Properties[graphson.PropName].(string)
		url := absoluteURL(v.Properties[graphson.PropPath], base)

		hasHome := stubTargets[url] || stubTargets[stripFragment(url)]
		props := map[string]any{
			graphson.PropName:       name,
			graphson.PropPath:       url,
			graphson.PropCluster:    project + " (external)",
			PropExternalProject:     true,
			PropExternalProjectName: project,
		}
		if hasHome {
			props[PropHasHomeConnection] = true
		}
		merged.Vertices = append(merged.Vertices, graphson.Vertex{
			ID:         newID,
			Label:      v.Label,
			Properties: props,
		})
		urlToID[url] = newID
		urlToID[stripFragment(url)] = newID
	}

	// Replace home stubs that now have a real vertex.
	redirect := make(map[int]int)
	kept := merged.Vertices[:0]
	for _, v := range merged.Vertices {
		if isStub(v) {
			url, _ := v.Properties[graphson.PropPath].(string)
			if covered(url, base) {
				if target, ok := urlToID[url]; ok {
					redirect[v.ID] = target
					continue
				}
				if target, ok := urlToID[stripFragment(url)]; ok {
					redirect[v.ID] = target
					continue
				}
			}
		}
		kept = append(kept, v)
	}
	merged.Vertices = kept

	// Redirect home edges away from removed stubs.
	for i := range merged.Edges {
		if to, ok := redirect[merged.Edges[i].OutV]; ok {
			merged.Edges[i].OutV = to
		}
		if to, ok := redirect[merged.Edges[i].InV]; ok {
			merged.Edges[i].InV = to
		}
	}

	// Append the external project's internal edges.
	nextEdgeID := len(merged.Edges)
	for _, e := range ext.Edges {
		if !imported[e.OutV] || !imported[e.InV] {
			// One endpoint was a dropped stub of the external project.
			continue
		}
		merged.Edges = append(merged.Edges, graphson.Edge{
			ID:         nextEdgeID,
			Label:      e.Label,
			OutV:       e.OutV + offset,
			InV:        e.InV + offset,
			OutVLabel:  e.OutVLabel,
			InVLabel:   e.InVLabel,
			Properties: e.Properties,
		})
		nextEdgeID++
	}

	return merged
}

// isStub reports whether a vertex is an external reference stub rather than
// a real page of its own project.
func isStub(v graphson.Vertex) bool {
	if v.Label == "intersphinx" || v.Label == "external" {
		return true
	}
	if b, ok := v.Properties[graphson.PropIsIntersphinx].(bool); ok && b {
		return true
	}
	if b, ok := v.Properties[graphson.PropIsExternal].(bool); ok && b {
		return true
	}
	return false
}

// absoluteURL rewrites a viewer-relative page path to an absolute URL under
// base. Already-absolute paths pass through.
func absoluteURL(pathProp any, base string) string {
	path, _ := pathProp.(string)
	if rest, ok := strings.CutPrefix(path, "../../../"); ok {
		return base + "/" + rest
	}
	return path
}

// covered reports whether url lives under base.
func covered(url, base string) bool {
	url = stripFragment(url)
	trimmed := strings.TrimSuffix(url, "/")
	return trimmed == base || strings.HasPrefix(trimmed, base+"/")
}

// stripFragment removes a #fragment suffix.
func stripFragment(url string) string {
	s, _, _ := strings.Cut(url, "#")
	return s
}
