// Package form is the form binding and validation engine.
//
// A Form owns a field registry, a per-field debounce scheduler, a validation
// adapter over an external schema, and an error store. Input on a binding
// re-arms that field's debounce timer; when the quiet period elapses the
// field is validated against a fresh snapshot and the error store is patched
// for that field only. Submit validates the whole snapshot with collect-all
// semantics and either calls the success callback or replaces the error
// store with the failures.
//
// Each field carries a monotonically increasing generation token. Input,
// ValidateNow and Unregister bump it, and a validation result is applied only
// while its token is still current, so a slow result can never overwrite a
// newer one.
//
//	f, err := form.New(schema)
//	if err != nil {
//		return err
//	}
//	defer f.Close()
//
//	username := f.MustRegister("username")
//	_ = username.Input("Ni")
//	...
//	err = f.HandleSubmit(onSuccess)(ctx, event)
package form
