// cmd/ddlgen/ddlgen.go
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"storefront/internal/infra/database"
)

func mustWrite(path string, content string) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		panic(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		panic(err)
	}
}

// 番号付きで書き出すので、ファイル名順に流せば FK の依存順になる。
func main() {
	outDir := flag.String("out", "migrations", "output directory")
	flag.Parse()

	for i, s := range database.Schemas {
		path := filepath.Join(*outDir, fmt.Sprintf("%03d_init_%s.sql", i+1, s.Name))
		mustWrite(path, s.DDL)
		fmt.Println("✅ Generated:", path)
	}
}
