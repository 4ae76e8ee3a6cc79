// Command avianfind resolves resources against a classpath-style search
// path: list every visible resource, print one resource's bytes, or test
// for existence.
package main

import (
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"

	"github.com/jaanek/avian"
)

func usage() {
	fmt.Fprintf(os.Stderr, `usage: avianfind -path SEARCHPATH [flags] COMMAND [NAME]

Commands:
  list          print every resource visible through the search path
  cat NAME      write the first matching resource's bytes to stdout
  exists NAME   exit 0 if any path entry contains NAME, 1 otherwise

Flags:
`)
	flag.PrintDefaults()
}

func main() {
	var (
		path    = flag.String("path", "", "search path, entries separated by the platform list separator")
		boot    = flag.String("boot", "", "boot library supplying builtin [name] entries")
		verbose = flag.Bool("v", false, "log lookups to stderr")
	)
	flag.Usage = usage
	flag.Parse()

	if *path == "" || flag.NArg() == 0 {
		usage()
		os.Exit(2)
	}
	if err := run(*path, *boot, *verbose, flag.Args()); err != nil {
		log.Fatal(err)
	}
}

func run(path, boot string, verbose bool, args []string) error {
	var opts []avian.Option
	if verbose {
		opts = append(opts, avian.WithLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		}))))
	}
	if boot != "" {
		lib, err := avian.OpenBootLibrary(boot)
		if err != nil {
			return err
		}
		opts = append(opts, avian.WithBootLibrary(lib))
	}

	f := avian.New(path, opts...)
	defer f.Close()

	switch cmd := args[0]; cmd {
	case "list":
		for name := range f.Names() {
			fmt.Println(name)
		}
		return nil

	case "cat":
		if len(args) != 2 {
			return fmt.Errorf("cat takes exactly one resource name")
		}
		r, err := f.Find(args[1])
		if err != nil {
			return err
		}
		defer r.Close()
		_, err = os.Stdout.Write(r.Bytes())
		return err

	case "exists":
		if len(args) != 2 {
			return fmt.Errorf("exists takes exactly one resource name")
		}
		if !f.Exists(args[1]) {
			os.Exit(1)
		}
		return nil

	default:
		return fmt.Errorf("unknown command %q", cmd)
	}
}
