// Package conflayer merges configuration from an ordered list of sources
// (environment variables, .env and JSON files, and remote secret stores such
// as HashiCorp Vault, AWS Secrets Manager, or Google Secret Manager) into a
// single hierarchical key space. Keys are colon-delimited, case-insensitive
// paths; later-registered sources override earlier ones on conflicting keys.
// Remote sources can be polled on an interval and republish the merged view
// atomically, so readers never observe a half-built state.
//
// Example:
//
//	root, err := conflayer.NewBuilder().
//	    Add(conflayer.NewJSONFileSource("config.json")).
//	    Add(conflayer.NewEnvSource(conflayer.WithEnvPrefix("APP_"))).
//	    Add(vaultSource, conflayer.Optional(), conflayer.ReloadEvery(time.Minute)).
//	    Build(ctx)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer root.Close()
//
//	port, err := root.At("server:port").Int()
//
// Navigation never fails: chaining through missing paths yields a not-found
// node, and only the terminal conversion step reports an error.
package conflayer
