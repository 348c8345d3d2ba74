// ubxgen emits a starter ubxctl config or validates an existing one.
package main

import (
	"flag"
	"log"
	"os"

	"github.com/BurntSushi/toml"

	"github.com/danmuck/ubxctl/internal/config"
)

func main() {
	output := flag.String("output", "ubxctl.toml", "output path for config template")
	validate := flag.Bool("validate", false, "validate an existing config file")
	input := flag.String("input", "ubxctl.toml", "config path for validation")
	force := flag.Bool("force", false, "overwrite existing config file")
	flag.Parse()

	if *validate {
		if _, err := config.Load(*input); err != nil {
			log.Fatal(err)
		}
		log.Printf("config ok: %s", *input)
		return
	}

	if !*force {
		if _, err := os.Stat(*output); err == nil {
			log.Fatalf("refusing to overwrite %s (use -force)", *output)
		}
	}

	f, err := os.Create(*output)
	if err != nil {
		log.Fatal(err)
	}
	defer f.Close()

	if err := toml.NewEncoder(f).Encode(config.Default()); err != nil {
		log.Fatal(err)
	}
	log.Printf("wrote %s", *output)
}
