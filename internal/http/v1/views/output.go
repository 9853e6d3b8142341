package views

// ViewOpenOutput for POST /v1/views (201 Created)
type ViewOpenOutput struct {
	Location string `header:"Location" doc:"URL of the opened view"`
	Body     View
}

// ViewOutput is returned by every operation that acts on an open view.
type ViewOutput struct {
	Body View
}
