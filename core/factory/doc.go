// Package factory instantiates pluggable modules such as plan sinks from
// configuration. A module is a type string plus a map of raw settings that
// the registered factory decodes into its own struct with Decode.
//
//	reg := factory.NewRegistry[metrics.PlanSink]()
//	reg.Register("webhook", func(conf map[string]any) (metrics.PlanSink, error) {
//	    var c struct{ URL string `json:"url"` }
//	    if err := factory.Decode(conf, &c); err != nil {
//	        return nil, err
//	    }
//	    return newWebhook(c.URL), nil
//	})
//	s, err := reg.Create(factory.ModuleConfig{Type: "webhook", Conf: map[string]any{"url": "http://hooks"}})
package factory
