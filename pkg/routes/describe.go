package routes

import (
	"net/http"
	"regexp"
	"strings"

	"github.com/JaimeStill/arbiter/pkg/openapi"
)

var wildcard = regexp.MustCompile(`\{([A-Za-z_][A-Za-z0-9_]*)(\.\.\.)?\}`)

// Describe adds an operation to spec for every route in groups. Paths are
// written in OpenAPI form: "{$}" anchors are dropped and "{key...}"
// wildcards become "{key}".
func Describe(spec *openapi.Spec, groups ...Group) {
	for _, group := range groups {
		describeGroup(spec, "", group)
	}
}

func describeGroup(spec *openapi.Spec, parentPrefix string, group Group) {
	fullPrefix := parentPrefix + group.Prefix
	for _, route := range group.Routes {
		path := OpenAPIPath(fullPrefix + route.Pattern)

		op := route.OpenAPI
		if op == nil {
			op = &openapi.Operation{Summary: route.Method + " " + path}
		}
		if len(op.Tags) == 0 {
			op.Tags = []string{tag(fullPrefix)}
		}
		if op.Parameters == nil {
			for _, m := range wildcard.FindAllStringSubmatch(path, -1) {
				op.Parameters = append(op.Parameters, openapi.PathParam(m[1], ""))
			}
		}
		if op.Responses == nil {
			op.Responses = map[int]*openapi.Response{
				http.StatusOK: {Description: "OK"},
			}
		}

		item, ok := spec.Paths[path]
		if !ok {
			item = &openapi.PathItem{}
			spec.Paths[path] = item
		}
		switch route.Method {
		case http.MethodGet:
			item.Get = op
		case http.MethodPost:
			item.Post = op
		case http.MethodPut:
			item.Put = op
		case http.MethodDelete:
			item.Delete = op
		}
	}
	for _, child := range group.Children {
		describeGroup(spec, fullPrefix, child)
	}
}

// OpenAPIPath converts a ServeMux pattern path to its OpenAPI form.
func OpenAPIPath(pattern string) string {
	path := strings.TrimSuffix(pattern, "{$}")
	path = wildcard.ReplaceAllString(path, "{$1}")
	if path == "" {
		return "/"
	}
	if len(path) > 1 {
		path = strings.TrimSuffix(path, "/")
	}
	return path
}

func tag(prefix string) string {
	name, _, _ := strings.Cut(strings.TrimPrefix(prefix, "/"), "/")
	if name == "" {
		return "default"
	}
	return name
}
