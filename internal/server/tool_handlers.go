package server

import (
	"net/http"
	"strings"

	"seosuite/internal/core"
	"seosuite/internal/fetch"
	"seosuite/internal/parser"
	"seosuite/internal/services"
)

// ClustersResponse lists keyword clusters.
type ClustersResponse struct {
	Clusters []core.Cluster `json:"clusters"`
	Total    int            `json:"total"`
}

// ConvertURLsRequest is a newline separated URL list.
type ConvertURLsRequest struct {
	Text string `json:"text"`
}

// ConvertURLsResponse has one entry per input line and the bulk text built
// from the lines that converted.
type ConvertURLsResponse struct {
	Results   []parser.ConvertedURL `json:"results"`
	BulkInput string                `json:"bulk_input"`
}

// ConvertColumnsRequest holds three newline separated columns.
type ConvertColumnsRequest struct {
	Titles   string `json:"titles"`
	URLs     string `json:"urls"`
	Keywords string `json:"keywords"`
}

// BulkInputResponse carries generated bulk text.
type BulkInputResponse struct {
	BulkInput string `json:"bulk_input"`
}

// handleGenerateLinks handles POST /api/links
func (s *Server) handleGenerateLinks(w http.ResponseWriter, r *http.Request) {
	var req services.LinkRequest
	if !s.decodeJSON(w, r, &req) {
		return
	}

	result, err := s.deps.Linker.Generate(req)
	if err != nil {
		s.respondFailure(w, r, err)
		return
	}
	s.respondJSON(w, http.StatusOK, result)
}

// handleClusters handles POST /api/clusters
func (s *Server) handleClusters(w http.ResponseWriter, r *http.Request) {
	var req services.LinkRequest
	if !s.decodeJSON(w, r, &req) {
		return
	}

	clusters, err := s.deps.Linker.Clusters(req)
	if err != nil {
		s.respondFailure(w, r, err)
		return
	}
	s.respondJSON(w, http.StatusOK, ClustersResponse{Clusters: clusters, Total: len(clusters)})
}

// handleExtractKeywords handles POST /api/keywords/extract. Config fields
// missing from the body keep the server defaults.
func (s *Server) handleExtractKeywords(w http.ResponseWriter, r *http.Request) {
	req := fetch.Request{Config: s.deps.Keywords}
	if !s.decodeJSON(w, r, &req) {
		return
	}
	if req.SitemapURL != "" && len(req.URLs) == 0 {
		req.Config.InputType = core.InputSitemap
	}

	result, err := s.deps.Extractor.Run(r.Context(), req)
	if err != nil {
		s.respondFailure(w, r, err)
		return
	}
	s.respondJSON(w, http.StatusOK, result)
}

// handleConvertURLs handles POST /api/convert/urls
func (s *Server) handleConvertURLs(w http.ResponseWriter, r *http.Request) {
	var req ConvertURLsRequest
	if !s.decodeJSON(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.Text) == "" {
		s.respondError(w, http.StatusBadRequest, "text is required")
		return
	}

	results := parser.ConvertURLs(req.Text)
	var lines []string
	for _, c := range results {
		if c.Error == "" {
			lines = append(lines, c.Line)
		}
	}
	s.respondJSON(w, http.StatusOK, ConvertURLsResponse{Results: results, BulkInput: strings.Join(lines, "\n")})
}

// handleConvertColumns handles POST /api/convert/columns
func (s *Server) handleConvertColumns(w http.ResponseWriter, r *http.Request) {
	var req ConvertColumnsRequest
	if !s.decodeJSON(w, r, &req) {
		return
	}

	bulk, err := parser.CombineColumns(req.Titles, req.URLs, req.Keywords)
	if err != nil {
		s.respondFailure(w, r, err)
		return
	}
	s.respondJSON(w, http.StatusOK, BulkInputResponse{BulkInput: bulk})
}
