// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Daco Labs

package server

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/dacolabs/records/internal/records"
	"github.com/gofiber/fiber/v2"
)

type listRequest struct {
	Filter      map[string]any   `json:"filter"`
	Sorts       []map[string]any `json:"sorts"`
	PageSize    int              `json:"pageSize"`
	StartCursor string           `json:"startCursor"`
	Simplified  bool             `json:"simplified"`
}

type getRequest struct {
	PageID     string `json:"pageId"`
	Simplified bool   `json:"simplified"`
}

type writeRequest struct {
	Properties     map[string]any `json:"properties"`
	Format         string         `json:"format"`
	SkipValidation bool           `json:"skipValidation"`
}

type propertiesRequest struct {
	Updates map[string]map[string]any `json:"updates"`
}

type endpoint struct {
	Label string `json:"label"`
	Path  string `json:"path"`
}

type index struct {
	Message     string              `json:"message"`
	Version     string              `json:"version,omitempty"`
	Description string              `json:"description"`
	Endpoints   map[string]endpoint `json:"endpoints"`
}

type health struct {
	Status         string   `json:"status"`
	Timestamp      string   `json:"timestamp"`
	DatabaseConfig string   `json:"database_config"`
	Missing        []string `json:"missing,omitempty"`
}

type handler func(c *fiber.Ctx, svc *records.Service) error

func (s *Server) routes() {
	s.app.Get("/", s.index)
	s.app.Get("/health", s.health)

	api := s.app.Group("/api/:collection")
	api.Get("/", s.collection(s.list))
	api.Post("/", s.collection(s.create))
	api.Post("/list", s.collection(s.listBody))
	api.Post("/get", s.collection(s.getBody))
	api.Post("/validate", s.collection(s.validate))
	api.Get("/schema", s.collection(s.schema))
	api.Get("/contract", s.collection(s.contract))
	api.Get("/:id", s.collection(s.get))
	api.Patch("/:id", s.collection(s.update))
	api.Delete("/:id", s.collection(s.archive))
	api.Get("/:id/properties", s.collection(s.properties))
	api.Patch("/:id/properties", s.collection(s.updateProperties))
	api.Get("/:id/properties/:name", s.collection(s.property))
	api.Patch("/:id/properties/:name", s.collection(s.updateProperty))

	s.app.Use(s.notFound)
}

// collection resolves the :collection parameter before calling h.
func (s *Server) collection(h handler) fiber.Handler {
	return func(c *fiber.Ctx) error {
		svc, err := s.registry.Get(c.Params("collection"))
		if err != nil {
			return c.Status(http.StatusNotFound).JSON(records.Envelope{Error: err.Error(), Code: records.CodeNotFound})
		}
		return h(c, svc)
	}
}

func (s *Server) index(c *fiber.Ctx) error {
	endpoints := make(map[string]endpoint, s.registry.Len())
	for _, svc := range s.registry.Services() {
		endpoints[svc.Name()] = endpoint{Label: svc.Label(), Path: "/api/" + svc.Name()}
	}
	return c.JSON(index{
		Message:     "records API",
		Version:     s.opts.Version,
		Description: fmt.Sprintf("RESTful API over %d workspace collections", len(endpoints)),
		Endpoints:   endpoints,
	})
}

func (s *Server) health(c *fiber.Ctx) error {
	h := health{
		Status:         "OK",
		Timestamp:      s.opts.Now().UTC().Format(time.RFC3339),
		DatabaseConfig: "Valid",
	}
	if len(s.opts.Missing) > 0 {
		h.DatabaseConfig = "Some IDs missing"
		h.Missing = s.opts.Missing
	}
	return c.JSON(h)
}

func (s *Server) list(c *fiber.Ctx, svc *records.Service) error {
	q := records.Query{
		PageSize:    c.QueryInt("pageSize"),
		StartCursor: c.Query("startCursor"),
	}
	if raw := c.Query("filter"); raw != "" {
		if err := decodeJSON(c, []byte(raw), &q.Filter); err != nil {
			return badRequest(c, "filter must be a JSON object")
		}
	}
	if raw := c.Query("sorts"); raw != "" {
		if err := decodeJSON(c, []byte(raw), &q.Sorts); err != nil {
			return badRequest(c, "sorts must be a JSON array")
		}
	}
	return s.sendList(c, svc, q, c.QueryBool("simplified"))
}

func (s *Server) listBody(c *fiber.Ctx, svc *records.Service) error {
	var req listRequest
	if err := bind(c, &req); err != nil {
		return badRequest(c, "invalid JSON body")
	}
	q := records.Query{Filter: req.Filter, Sorts: req.Sorts, PageSize: req.PageSize, StartCursor: req.StartCursor}
	return s.sendList(c, svc, q, req.Simplified)
}

func (s *Server) sendList(c *fiber.Ctx, svc *records.Service, q records.Query, simplified bool) error {
	res, err := svc.List(c.UserContext(), q)
	if err != nil {
		return fail(c, err)
	}
	var data any
	if simplified {
		data = records.SimplifyAll(res.Records)
	}
	return respond(c, http.StatusOK, records.List(res, data))
}

func (s *Server) getBody(c *fiber.Ctx, svc *records.Service) error {
	var req getRequest
	if err := bind(c, &req); err != nil {
		return badRequest(c, "invalid JSON body")
	}
	if req.PageID == "" {
		return badRequest(c, "pageId is required")
	}
	return s.sendRecord(c, svc, req.PageID, req.Simplified)
}

func (s *Server) get(c *fiber.Ctx, svc *records.Service) error {
	return s.sendRecord(c, svc, c.Params("id"), c.QueryBool("simplified"))
}

func (s *Server) sendRecord(c *fiber.Ctx, svc *records.Service, id string, simplified bool) error {
	rec, err := svc.Get(c.UserContext(), id)
	if err != nil {
		return fail(c, err)
	}
	if simplified {
		return respond(c, http.StatusOK, records.OK(records.Simplify(*rec)))
	}
	return respond(c, http.StatusOK, records.OK(rec))
}

func (s *Server) create(c *fiber.Ctx, svc *records.Service) error {
	w, err := s.write(c)
	if err != nil {
		return badRequest(c, err.Error())
	}
	rec, err := svc.Create(c.UserContext(), w)
	if err != nil {
		return fail(c, err)
	}
	return respond(c, http.StatusCreated, records.OK(rec))
}

func (s *Server) update(c *fiber.Ctx, svc *records.Service) error {
	w, err := s.write(c)
	if err != nil {
		return badRequest(c, err.Error())
	}
	rec, err := svc.Update(c.UserContext(), c.Params("id"), w)
	if err != nil {
		return fail(c, err)
	}
	return respond(c, http.StatusOK, records.OK(rec))
}

func (s *Server) validate(c *fiber.Ctx, svc *records.Service) error {
	w, err := s.write(c)
	if err != nil {
		return badRequest(c, err.Error())
	}
	res, err := svc.Validate(c.UserContext(), w)
	if err != nil {
		return fail(c, err)
	}
	return respond(c, http.StatusOK, records.OK(res))
}

// write decodes a create or update body.
func (s *Server) write(c *fiber.Ctx) (records.Write, error) {
	var req writeRequest
	if err := bind(c, &req); err != nil {
		return records.Write{}, errors.New("invalid JSON body")
	}
	if req.Properties == nil {
		return records.Write{}, errors.New("properties is required")
	}
	format, err := records.ParseFormat(req.Format)
	if err != nil {
		return records.Write{}, err
	}
	return records.Write{Properties: req.Properties, Format: format, SkipValidation: req.SkipValidation}, nil
}

func (s *Server) archive(c *fiber.Ctx, svc *records.Service) error {
	rec, err := svc.Archive(c.UserContext(), c.Params("id"))
	if err != nil {
		return fail(c, err)
	}
	return respond(c, http.StatusOK, records.OK(rec))
}

func (s *Server) schema(c *fiber.Ctx, svc *records.Service) error {
	snap, err := svc.AnalyzeSchema(c.UserContext(), c.QueryBool("refresh"))
	if err != nil {
		return fail(c, err)
	}
	return respond(c, http.StatusOK, records.OK(snap))
}

func (s *Server) contract(c *fiber.Ctx, svc *records.Service) error {
	switch format := c.Query("format"); format {
	case "":
		ct, err := svc.GenerateContract(c.UserContext())
		if err != nil {
			return fail(c, err)
		}
		return respond(c, http.StatusOK, records.OK(ct))
	case "jsonschema":
		js, err := svc.CreateSchema(c.UserContext())
		if err != nil {
			return fail(c, err)
		}
		return respond(c, http.StatusOK, records.OK(js))
	default:
		return badRequest(c, fmt.Sprintf("unknown contract format %q", format))
	}
}

func (s *Server) properties(c *fiber.Ctx, svc *records.Service) error {
	props, err := svc.Properties(c.UserContext(), c.Params("id"), c.QueryBool("simplified", true))
	if err != nil {
		return fail(c, err)
	}
	return respond(c, http.StatusOK, records.OK(props))
}

func (s *Server) property(c *fiber.Ctx, svc *records.Service) error {
	pv, err := svc.Property(c.UserContext(), c.Params("id"), c.Params("name"), c.QueryBool("simplified", true))
	if err != nil {
		return fail(c, err)
	}
	return respond(c, http.StatusOK, records.OK(pv))
}

func (s *Server) updateProperties(c *fiber.Ctx, svc *records.Service) error {
	var req propertiesRequest
	if err := bind(c, &req); err != nil {
		return badRequest(c, "updates must map property names to objects")
	}
	if req.Updates == nil {
		return badRequest(c, `updates object is required, e.g. {"updates": {"Name": {"type": "title", "value": "New name"}}}`)
	}
	rec, err := svc.UpdateProperties(c.UserContext(), c.Params("id"), req.Updates)
	if err != nil {
		return fail(c, err)
	}
	return respond(c, http.StatusOK, records.OK(rec))
}

func (s *Server) updateProperty(c *fiber.Ctx, svc *records.Service) error {
	var req map[string]any
	if err := bind(c, &req); err != nil {
		return badRequest(c, "invalid JSON body")
	}
	typ, _ := req["type"].(string)
	value, hasValue := req["value"]
	if typ == "" || !hasValue {
		return badRequest(c, "type and value are required")
	}
	updates := map[string]map[string]any{
		c.Params("name"): {"type": typ, "value": value},
	}
	rec, err := svc.UpdateProperties(c.UserContext(), c.Params("id"), updates)
	if err != nil {
		return fail(c, err)
	}
	return respond(c, http.StatusOK, records.OK(rec))
}

// bind decodes the JSON request body into dst. An empty body leaves dst untouched.
func bind(c *fiber.Ctx, dst any) error {
	body := c.Body()
	if len(bytes.TrimSpace(body)) == 0 {
		return nil
	}
	return decodeJSON(c, body, dst)
}

func decodeJSON(c *fiber.Ctx, data []byte, dst any) error {
	return c.App().Config().JSONDecoder(data, dst)
}
