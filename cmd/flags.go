package cmd

import (
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// bindServerFlags registers the HTTP server flags on a flag set and binds
// them into viper. Shared by serve and any future command that embeds the
// server.
func bindServerFlags(fs *pflag.FlagSet) {
	fs.IntP("port", "p", 8888, "port to serve on")
	fs.String("host", "localhost", "host to bind to")

	viper.BindPFlag("server.port", fs.Lookup("port"))
	viper.BindPFlag("server.host", fs.Lookup("host"))
}

// bindDocumentFlags registers the document discovery flags shared by the
// serve, pack, and search commands.
func bindDocumentFlags(fs *pflag.FlagSet) {
	fs.String("pattern", "*.md", "document file name pattern")

	viper.BindPFlag("documents.pattern", fs.Lookup("pattern"))
}
