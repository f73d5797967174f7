package httpapi

import (
	"context"
	"log/slog"
	"net/http"

	"switchplane/internal/configuration"
	"switchplane/internal/dialplan"
	"switchplane/internal/directory"
	"switchplane/internal/fsxml"
)

// FSXMLHandler is the single mod_xml_curl-style entry point: the switch
// posts its request variables as an urlencoded form and reads the
// "section" field to say which resolver should answer.
func FSXMLHandler(dp *dialplan.Resolver, dir *directory.Resolver, cfg *configuration.Resolver) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			http.Error(w, "invalid form body", http.StatusBadRequest)
			return
		}

		section := r.PostFormValue("section")
		if section == "" {
			http.Error(w, "missing section", http.StatusBadRequest)
			return
		}

		vars := formToVars(r)

		var doc *fsxml.Document
		switch section {
		case "dialplan":
			doc = dp.Resolve(r.Context(), dialplan.RequestVars(vars))
		case "directory":
			doc = dir.Resolve(r.Context(), vars.first("domain", "variable_domain_name"), vars.first("user", "sip_auth_username"))
		case "configuration":
			doc = cfg.Resolve(r.Context(), vars.first("key_value", "key"))
		default:
			http.Error(w, "unrecognized section", http.StatusNotFound)
			return
		}

		writeXML(r.Context(), w, doc)
	}
}

// formVars is the same read-only accessor discipline dialplan.RequestVars
// uses, reused here for the directory/configuration key fields the
// dispatcher itself has to read before it knows which resolver to call.
type formVars map[string]string

func (v formVars) first(keys ...string) string {
	for _, k := range keys {
		if val, ok := v[k]; ok && val != "" {
			return val
		}
	}
	return ""
}

func formToVars(r *http.Request) formVars {
	vars := make(formVars, len(r.PostForm))
	for k, values := range r.PostForm {
		if len(values) > 0 {
			vars[k] = values[0]
		}
	}
	return vars
}

func writeXML(ctx context.Context, w http.ResponseWriter, doc *fsxml.Document) {
	body, err := fsxml.Render(doc)
	if err != nil {
		slog.Error("fsxml: failed to render response", "error", err, "request_id", requestIDFromContext(ctx))
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/xml")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}
