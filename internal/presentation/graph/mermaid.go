package graph

import (
	"fmt"
	"strings"

	"github.com/aretw0/pageflow/pkg/domain"
)

// PipelineOverlay marks parts of the pipeline to highlight.
type PipelineOverlay struct {
	// Handler is the handler to highlight, as "GET" or "POST:Save".
	Handler string

	// Failed names the filters that were seen failing.
	Failed []string
}

// FilterName returns the filter's Name() when it has one, or its type.
func FilterName(f domain.Filter) string {
	if named, ok := f.(interface{ Name() string }); ok {
		return named.Name()
	}
	return fmt.Sprintf("%T", f)
}

// GenerateMermaid produces a Mermaid flowchart of the pipeline of desc.
// The request flows down through the filters, outermost first, to the page and
// its handlers. Errors unwind back up the dotted edges.
// It applies semantic styling:
// - Entry: ((Circle))
// - Async filter: [[Subroutine]]
// - Sync filter: [Rectangle]
// - Unsupported filter: {{Hexagon}}
// - Handler: [/Parallelogram/]
func GenerateMermaid(desc *domain.ActionDescriptor, globals []domain.FilterDescriptor, overlay *PipelineOverlay) string {
	var sb strings.Builder
	sb.WriteString("graph TD\n")

	entry := sanitizeMermaidID("page_" + desc.ID)
	sb.WriteString(fmt.Sprintf("    %s((\"%s\"))\n", entry, escape(desc.RouteTemplate)))

	all := append(append([]domain.FilterDescriptor(nil), globals...), desc.Filters...)
	filters := domain.SortFilters(all)

	prev := entry
	ids := make([]string, 0, len(filters))
	names := make(map[string]string, len(filters))
	for i, f := range filters {
		id := fmt.Sprintf("f%d", i)
		name := FilterName(f)
		names[id] = name

		opener, closer, mode := "{{", "}}", "unsupported"
		switch f.(type) {
		case domain.AsyncExceptionFilter:
			opener, closer, mode = "[[", "]]", "async"
		case domain.ExceptionFilter:
			opener, closer, mode = "[", "]", "sync"
		}
		sb.WriteString(fmt.Sprintf("    %s%s\"%s <br/> %s\"%s\n", id, opener, escape(name), mode, closer))
		sb.WriteString(fmt.Sprintf("    %s --> %s\n", prev, id))
		ids = append(ids, id)
		prev = id
	}

	pageLabel := desc.ID
	if desc.PageType != nil {
		pageLabel = desc.PageType.String()
	}
	sb.WriteString(fmt.Sprintf("    page[\"%s\"]\n", escape(pageLabel)))
	sb.WriteString(fmt.Sprintf("    %s --> page\n", prev))

	handlerIDs := make(map[string]string, len(desc.HandlerMethods))
	for _, h := range desc.HandlerMethods {
		label := h.HTTPMethod
		if h.Name != "" {
			label += ":" + h.Name
		}
		id := sanitizeMermaidID("h_" + label)
		handlerIDs[label] = id
		sb.WriteString(fmt.Sprintf("    %s[/\"%s\"/]\n", id, label))
		sb.WriteString(fmt.Sprintf("    page --> %s\n", id))
	}

	// Error unwinding
	back := "page"
	for i := len(ids) - 1; i >= 0; i-- {
		sb.WriteString(fmt.Sprintf("    %s -. error .-> %s\n", back, ids[i]))
		back = ids[i]
	}

	if overlay != nil {
		sb.WriteString("\n    %% Overlay Styles\n")
		sb.WriteString("    classDef failed fill:#ffcdd2,stroke:#b71c1c,stroke-width:2px,color:#000;\n")
		sb.WriteString("    classDef current fill:#ffeb3b,stroke:#fbc02d,stroke-width:4px,color:#000;\n")

		failed := make(map[string]bool, len(overlay.Failed))
		for _, name := range overlay.Failed {
			failed[name] = true
		}
		for _, id := range ids {
			if failed[names[id]] {
				sb.WriteString(fmt.Sprintf("    class %s failed;\n", id))
			}
		}
		if id, ok := handlerIDs[overlay.Handler]; ok {
			sb.WriteString(fmt.Sprintf("    class %s current;\n", id))
		}
	}

	return sb.String()
}

func escape(label string) string {
	return strings.ReplaceAll(label, "\"", "'")
}

func sanitizeMermaidID(id string) string {
	r := strings.NewReplacer(".", "_", "-", "_", "/", "_", "\\", "_", ":", "_", "{", "_", "}", "_", " ", "_", "*", "_")
	return r.Replace(id)
}
