package controllers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"inkpost/app/services"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
)

// PostController handles HTTP requests for blog posts
type PostController struct {
	postService *services.PostService
	log         logrus.FieldLogger
}

// NewPostController creates a new PostController
func NewPostController(postService *services.PostService, log logrus.FieldLogger) *PostController {
	return &PostController{postService: postService, log: log}
}

// postRequest accepts the category either as a number or as a numeric
// string. Null, "" and an absent field all mean no category.
type postRequest struct {
	Title    string          `json:"title"`
	Content  string          `json:"content"`
	Category json.RawMessage `json:"category"`
}

func (p postRequest) input() (services.PostInput, error) {
	in := services.PostInput{Title: p.Title, Content: p.Content}
	raw := bytes.TrimSpace(p.Category)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return in, nil
	}
	var text string
	if raw[0] == '"' {
		if err := json.Unmarshal(raw, &text); err != nil {
			return in, invalidCategory()
		}
		text = strings.TrimSpace(text)
		if text == "" {
			return in, nil
		}
	} else {
		text = string(raw)
	}
	id, err := strconv.ParseInt(text, 10, 64)
	if err != nil || id < 0 {
		return in, invalidCategory()
	}
	in.CategoryID = id
	return in, nil
}

func invalidCategory() *services.ValidationError {
	return &services.ValidationError{Fields: []services.FieldError{{Param: "category", Msg: "category must be a valid id"}}}
}

func (pc *PostController) decodeInput(w http.ResponseWriter, r *http.Request) (services.PostInput, error) {
	var req postRequest
	if err := decodeJSON(w, r, &req); err != nil {
		return services.PostInput{}, err
	}
	return req.input()
}

// postID reads the {id} route variable. Ids that cannot exist are reported
// as not found.
func postID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil || id <= 0 {
		return 0, services.ErrPostNotFound
	}
	return id, nil
}

// Index handles GET /api/posts
func (pc *PostController) Index(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	q := services.ListQuery{
		Sort: strings.ToLower(query.Get("sort")),
	}
	if page, err := strconv.Atoi(query.Get("page")); err == nil {
		q.Page = page
	}
	if limit, err := strconv.Atoi(query.Get("limit")); err == nil {
		q.Limit = limit
	}
	if raw := strings.TrimSpace(query.Get("category")); raw != "" {
		category, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || category <= 0 {
			sendError(w, r, pc.log, invalidCategory())
			return
		}
		q.CategoryID = category
	}

	page, err := pc.postService.List(r.Context(), q)
	if err != nil {
		sendError(w, r, pc.log, err)
		return
	}
	sendJSON(w, http.StatusOK, page)
}

// Show handles GET /api/posts/{id}
func (pc *PostController) Show(w http.ResponseWriter, r *http.Request) {
	id, err := postID(r)
	if err != nil {
		sendError(w, r, pc.log, err)
		return
	}
	post, err := pc.postService.Get(r.Context(), id)
	if err != nil {
		sendError(w, r, pc.log, err)
		return
	}
	sendJSON(w, http.StatusOK, post)
}

// Create handles POST /api/posts
func (pc *PostController) Create(w http.ResponseWriter, r *http.Request) {
	caller := callerID(r)
	if caller == 0 {
		sendError(w, r, pc.log, services.ErrUnauthenticated)
		return
	}
	in, err := pc.decodeInput(w, r)
	if err != nil {
		sendError(w, r, pc.log, err)
		return
	}
	post, err := pc.postService.Create(r.Context(), caller, in)
	if err != nil {
		sendError(w, r, pc.log, err)
		return
	}
	sendJSON(w, http.StatusCreated, post)
}

// Update handles PUT /api/posts/{id}
func (pc *PostController) Update(w http.ResponseWriter, r *http.Request) {
	caller := callerID(r)
	if caller == 0 {
		sendError(w, r, pc.log, services.ErrUnauthenticated)
		return
	}
	id, err := postID(r)
	if err != nil {
		sendError(w, r, pc.log, err)
		return
	}
	in, err := pc.decodeInput(w, r)
	if err != nil {
		sendError(w, r, pc.log, err)
		return
	}
	post, err := pc.postService.Update(r.Context(), caller, id, in)
	if err != nil {
		sendError(w, r, pc.log, err)
		return
	}
	sendJSON(w, http.StatusOK, post)
}

// Delete handles DELETE /api/posts/{id}
func (pc *PostController) Delete(w http.ResponseWriter, r *http.Request) {
	caller := callerID(r)
	if caller == 0 {
		sendError(w, r, pc.log, services.ErrUnauthenticated)
		return
	}
	id, err := postID(r)
	if err != nil {
		sendError(w, r, pc.log, err)
		return
	}
	if err := pc.postService.Delete(r.Context(), caller, id); err != nil {
		sendError(w, r, pc.log, err)
		return
	}
	sendMessage(w, http.StatusOK, "Post deleted")
}

// CountMine handles GET /api/posts/mine/count
func (pc *PostController) CountMine(w http.ResponseWriter, r *http.Request) {
	count, err := pc.postService.CountByAuthor(r.Context(), callerID(r))
	if err != nil {
		sendError(w, r, pc.log, err)
		return
	}
	sendJSON(w, http.StatusOK, map[string]int{"count": count})
}
