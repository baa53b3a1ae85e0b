// Package server puts a schema behind HTTP.
//
// GET /ws opens a live session: the connection owns one form, client frames
// feed its bindings and every published error state is pushed back as an
// "errors" frame. POST /submit validates a urlencoded or JSON body in one shot
// and answers 422 with the rendered error summary when it is blocked.
//
//	srv, err := server.New(schema, server.WithFormOptions(form.WithDebounce(300*time.Millisecond)))
//	if err != nil {
//		log.Fatalf("server: %v", err)
//	}
//	err = srv.ListenAndServe(ctx, ":8080")
package server
