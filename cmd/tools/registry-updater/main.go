// cmd/tools/registry-updater/main.go
package main

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/pflag"

	"wanted-applier/pkg/registry"
)

var registryPath string

func main() {
	addCmd := pflag.NewFlagSet("add", pflag.ExitOnError)
	updateCmd := pflag.NewFlagSet("update", pflag.ExitOnError)
	validateCmd := pflag.NewFlagSet("validate", pflag.ExitOnError)
	listCmd := pflag.NewFlagSet("list", pflag.ExitOnError)

	for _, fs := range []*pflag.FlagSet{addCmd, updateCmd, validateCmd, listCmd} {
		fs.StringVar(&registryPath, "path", "configs/categories.json", "Path to registry file")
	}

	// Add command flags
	name := addCmd.String("name", "", "Category name (e.g., GO)")
	code := addCmd.String("code", "", "Board tag code (e.g., 1025)")
	displayName := addCmd.String("displayName", "", "Display name (e.g., Go Developer)")

	// Update command flags
	nameUpdate := updateCmd.String("name", "", "Category name to update")
	field := updateCmd.String("field", "", "Field to update (code, displayName)")
	value := updateCmd.String("value", "", "New value for the field")

	if len(os.Args) < 2 {
		help(os.Stdout)
		os.Exit(1)
	}

	switch os.Args[1] {
	case "add":
		addCmd.Parse(os.Args[2:])
		if *name == "" || *code == "" {
			fmt.Println("Error: name and code are required for add.")
			addCmd.Usage()
			os.Exit(1)
		}
		category := registry.Category{Name: *name, Code: *code, DisplayName: *displayName}
		if err := addCategory(category); err != nil {
			fmt.Printf("Error adding category: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Added category: %s\n", *name)

	case "update":
		updateCmd.Parse(os.Args[2:])
		if *nameUpdate == "" || *field == "" || *value == "" {
			fmt.Println("Error: name, field, and value are required for update.")
			updateCmd.Usage()
			os.Exit(1)
		}
		if err := updateCategory(*nameUpdate, *field, *value); err != nil {
			fmt.Printf("Error updating category: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Updated category %s, field %s to %s\n", *nameUpdate, *field, *value)

	case "validate":
		validateCmd.Parse(os.Args[2:])
		if err := validateRegistry(); err != nil {
			fmt.Printf("Registry validation failed: %v\n", err)
			os.Exit(1)
		}

	case "list":
		listCmd.Parse(os.Args[2:])
		reg, err := registry.LoadRegistry(registryPath)
		if os.IsNotExist(err) {
			reg, err = registry.Default(), nil
		}
		if err != nil {
			fmt.Printf("Error loading registry: %v\n", err)
			os.Exit(1)
		}
		for _, c := range reg.Categories {
			fmt.Printf("%-10s %-6s %s\n", c.Name, c.Code, c.DisplayName)
		}

	case "help":
		fallthrough
	default:
		help(os.Stdout)
	}
}

func addCategory(category registry.Category) error {
	reg, err := registry.ReadFile(registryPath)
	if err != nil {
		if !os.IsNotExist(err) {
			return fmt.Errorf("failed to load registry: %w", err)
		}
		reg = &registry.CategoryRegistry{Version: "1"}
	}

	if _, err := reg.Resolve(category.Name); err == nil {
		return fmt.Errorf("category %s already exists", category.Name)
	}

	reg.Put(category)
	if err := reg.Validate(); err != nil {
		return err
	}
	reg.LastUpdated = time.Now().Format(time.RFC3339)
	return reg.Save(registryPath)
}

func updateCategory(name, field, value string) error {
	reg, err := registry.ReadFile(registryPath)
	if err != nil {
		return fmt.Errorf("failed to load registry: %w", err)
	}

	category, err := reg.Resolve(name)
	if err != nil || category.Name == "" {
		return fmt.Errorf("category %s not found", name)
	}

	switch field {
	case "code":
		category.Code = value
	case "displayName":
		category.DisplayName = value
	default:
		return fmt.Errorf("unknown field: %s", field)
	}

	reg.Put(category)
	if err := reg.Validate(); err != nil {
		return err
	}
	reg.LastUpdated = time.Now().Format(time.RFC3339)
	return reg.Save(registryPath)
}

func validateRegistry() error {
	reg, err := registry.ReadFile(registryPath)
	if err != nil {
		return fmt.Errorf("failed to load registry: %w", err)
	}
	if len(reg.Categories) == 0 {
		return fmt.Errorf("registry contains no categories")
	}
	if err := reg.Validate(); err != nil {
		return err
	}

	fmt.Printf("Registry validation passed. Found %d categories.\n", len(reg.Categories))
	return nil
}

func help(w io.Writer) {
	fmt.Fprint(w, `
Usage: registry-updater <command> [flags]

Commands:
  add      Add a job category to the registry
  update   Update an existing category's field
  validate Validate the registry file
  list     Show the effective categories (defaults merged with the file)
  help     Show this help message

Examples:
  registry-updater add --name GO --code 1025 --displayName "Go Developer"
  registry-updater update --name GO --field code --value 1026
  registry-updater validate --path configs/categories.json

Use 'registry-updater <command> -h' for more information about a command.
`)
}
