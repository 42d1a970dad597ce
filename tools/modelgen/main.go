package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"gorm.io/driver/postgres"
	"gorm.io/gen"
	"gorm.io/gorm"
)

const (
	// handWrittenModels holds the models the zone layout repo compiles
	// against; generated output is written elsewhere and diffed by hand.
	handWrittenModels = "internal/adapter/repo/gorm/model"
	defaultOut        = "tmp/modelgen/query"
	modelPkg          = "model"
)

// zoneTables are the tables owned by the zone layout repository.
var zoneTables = []string{"zone_cells", "zone_templates"}

func main() {
	var dsn, out string
	flag.StringVar(&dsn, "dsn", os.Getenv("GALLERY_DB_DSN"), "postgres dsn")
	flag.StringVar(&out, "out", defaultOut, "gen output dir; models land in its sibling model dir")
	flag.Parse()

	if dsn == "" {
		log.Fatal("missing --dsn or GALLERY_DB_DSN")
	}
	if dir := modelDir(out); filepath.Clean(dir) == filepath.Clean(handWrittenModels) {
		log.Fatalf("refusing to overwrite %s", handWrittenModels)
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		log.Fatalf("open postgres: %v", err)
	}

	g := gen.NewGenerator(gen.Config{
		OutPath:      out,
		ModelPkgPath: modelPkg,
		Mode:         gen.WithoutContext,
	})
	g.UseDB(db)
	for _, table := range zoneTables {
		g.GenerateModel(table)
	}
	g.Execute()

	fmt.Printf("generated gorm models for %v at %s; compare with %s\n", zoneTables, modelDir(out), handWrittenModels)
}

// modelDir is where gen writes models for a given output path.
func modelDir(out string) string {
	return filepath.Join(filepath.Dir(out), modelPkg)
}
