package handlers

import "github.com/gofiber/fiber/v2"

type Routes struct {
	Upload    *UploadHandler
	Candidate *CandidateHandler
	Match     *MatchHandler
}

// Register mounts the API endpoints on api, usually the /api/v1 group.
func (r Routes) Register(api fiber.Router) {
	api.Post("/upload", r.Upload.HandleUpload)

	api.Post("/candidates", r.Candidate.HandleSave)
	api.Get("/candidates/:id", r.Candidate.HandleGet)
	api.Get("/candidates/:id/matches", r.Match.HandleCandidateMatches)

	api.Get("/positions/open", r.Match.HandleOpenPositions)
	api.Get("/positions/:id/matches", r.Match.HandlePositionMatches)
}

// Endpoints lists the registered routes for the index page.
func (r Routes) Endpoints() []string {
	return []string{
		"POST /api/v1/upload",
		"POST /api/v1/candidates",
		"GET /api/v1/candidates/:id",
		"GET /api/v1/candidates/:id/matches",
		"GET /api/v1/positions/open",
		"GET /api/v1/positions/:id/matches",
	}
}
