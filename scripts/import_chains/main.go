package main

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/villageworks/villagecraft/internal/config"
	"github.com/villageworks/villagecraft/pkg/utils"
	"github.com/xuri/excelize/v2"
	"gopkg.in/yaml.v3"
)

// Converts a designer balance spreadsheet into the chains section of
// game.yaml. Each row: chain name, profession, produces, consumes, ratio,
// enabled. Output goes to stdout so it can be reviewed before pasting.
func main() {
	path := "chains.xlsx"
	if len(os.Args) > 1 {
		path = os.Args[1]
	}

	f, err := excelize.OpenFile(path)
	if err != nil {
		log.Fatal(err)
	}
	defer f.Close()

	chains := map[string]*config.ChainConfig{}
	order := []string{}

	for _, sheetName := range f.GetSheetList() {
		rows, err := f.GetRows(sheetName)
		if err != nil {
			fmt.Printf("Error reading sheet %s: %v\n", sheetName, err)
			continue
		}

		for i, row := range rows {
			if i == 0 || len(row) < 6 { // Skip header or invalid rows
				continue
			}

			// row[0]: chain name
			// row[1]: profession
			// row[2]: produced item
			// row[3]: consumed item
			// row[4]: ratio
			// row[5]: enabled (yes/no)

			name := strings.TrimSpace(row[0])
			if name == "" {
				continue
			}

			ratio := int64(1)
			if v := strings.TrimSpace(row[4]); v != "" {
				parsed, err := strconv.ParseInt(v, 10, 64)
				if err != nil {
					fmt.Printf("Invalid ratio %q in row %d, skipping\n", row[4], i)
					continue
				}
				ratio = parsed
			}

			chain, ok := chains[name]
			if !ok {
				chain = &config.ChainConfig{
					Name:    name,
					Enabled: strings.EqualFold(strings.TrimSpace(row[5]), "yes"),
				}
				chains[name] = chain
				order = append(order, name)
			}

			chain.Steps = append(chain.Steps, config.ChainStep{
				Profession: strings.ToLower(strings.TrimSpace(row[1])),
				Produces:   utils.NormalizeItemKey(row[2]),
				Consumes:   utils.NormalizeItemKey(row[3]),
				Ratio:      ratio,
			})
		}
	}

	out := struct {
		Chains []config.ChainConfig `yaml:"chains"`
	}{}
	for _, name := range order {
		out.Chains = append(out.Chains, *chains[name])
	}

	data, err := yaml.Marshal(out)
	if err != nil {
		log.Fatal(err)
	}
	fmt.Print(string(data))
	fmt.Fprintf(os.Stderr, "Converted %d chains.\n", len(out.Chains))
}
