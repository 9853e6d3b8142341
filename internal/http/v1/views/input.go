package views

// ViewOpenInput for POST /v1/views
type ViewOpenInput struct {
	Body struct {
		Kind string `json:"kind" minLength:"1" required:"true" doc:"Resource kind key" example:"users"`
	}
}

// ViewGetInput for GET /v1/views/{id}
type ViewGetInput struct {
	ID string `path:"id" format:"uuid" doc:"View identifier" example:"3f1c2b9e-5a7d-4e8f-9b0a-1c2d3e4f5a6b"`
}

// ViewPageInput for PUT /v1/views/{id}/page
type ViewPageInput struct {
	ID   string `path:"id" format:"uuid" doc:"View identifier" example:"3f1c2b9e-5a7d-4e8f-9b0a-1c2d3e4f5a6b"`
	Body struct {
		Page int `json:"page" minimum:"1" required:"true" doc:"1-based page number" example:"2"`
	}
}

// ViewSelectionInput for PUT /v1/views/{id}/selection
type ViewSelectionInput struct {
	ID   string `path:"id" format:"uuid" doc:"View identifier" example:"3f1c2b9e-5a7d-4e8f-9b0a-1c2d3e4f5a6b"`
	Body struct {
		IDs []string `json:"ids" required:"true" maxItems:"100" doc:"Identifiers of items on the current page" example:"[\"alice\",\"bob\"]"`
	}
}

// ViewRemoveInput for DELETE /v1/views/{id}/selection
type ViewRemoveInput struct {
	ID string `path:"id" format:"uuid" doc:"View identifier" example:"3f1c2b9e-5a7d-4e8f-9b0a-1c2d3e4f5a6b"`
}

// ViewRefreshInput for POST /v1/views/{id}/refresh
type ViewRefreshInput struct {
	ID string `path:"id" format:"uuid" doc:"View identifier" example:"3f1c2b9e-5a7d-4e8f-9b0a-1c2d3e4f5a6b"`
}

// ViewCloseInput for DELETE /v1/views/{id}
type ViewCloseInput struct {
	ID string `path:"id" format:"uuid" doc:"View identifier" example:"3f1c2b9e-5a7d-4e8f-9b0a-1c2d3e4f5a6b"`
}
