// Package views provides a reference gglayout.ViewProvider over an
// items.List, together with a text item view and its measurer.
//
// The pieces are independent:
//
//   - Adapter: serves TextViews for the items of a list, either as live
//     views created on demand or as recycled template instances
//   - TemplatePool: keeps free TextViews per template id
//   - TextMeasurer: measures TextViews by wrapping their text with a
//     golang.org/x/image font face
//   - Wrap: grapheme-aware line wrapping built on github.com/rivo/uniseg
//
// # Example usage
//
//	list := items.NewList(views.TitleLabels(language.English, names...)...)
//	pool := views.NewTemplatePool(nil)
//	adapter := views.NewAdapter(list, func(s string) string { return s },
//	    views.WithTemplates[string](pool, nil))
//
//	l := gglayout.New(adapter, &views.TextMeasurer{}, ggdraw.NewCanvas(),
//	    gglayout.WithMeasureStrategy(gglayout.MeasureVisible),
//	    gglayout.WithRecyclingTemplate(gglayout.RecyclingEnabled),
//	)
//	defer l.Close()
//	stop := l.Observe(list)
//	defer stop()
package views
