// Package listpage implements the behavior shared by the console's resource list screens:
// fetching a page of items from a backend service, tracking pagination and selection,
// and deleting the selected items in bulk with user feedback.
//
// A Controller is created per hosting view and is the only writer of its state.
// Operations that the view triggers (OnPageChange, Remove, Mount) never return errors;
// failures are delivered to the configured ErrorHandler instead.
package listpage
