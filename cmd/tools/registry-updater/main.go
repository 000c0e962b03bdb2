package main

import (
	"flag"
	"fmt"
	"os"
	"sort"
	"strings"
	"text/tabwriter"

	"bulkbuddy-workers/pkg/registry"
)

const defaultRegistryPath = "configs/activity-registry.json"

func main() {
	if len(os.Args) < 2 {
		help()
		os.Exit(1)
	}

	var err error
	switch os.Args[1] {
	case "add":
		err = runAdd(os.Args[2:])
	case "update":
		err = runUpdate(os.Args[2:])
	case "list":
		err = runList(os.Args[2:])
	case "validate":
		err = runValidate(os.Args[2:])
	default:
		help()
		return
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func runAdd(args []string) error {
	cmd := flag.NewFlagSet("add", flag.ExitOnError)
	path := cmd.String("path", defaultRegistryPath, "Path to registry file")
	id := cmd.String("id", "", "Activity ID (e.g., fetch-food-nutrition)")
	displayName := cmd.String("displayName", "", "Display Name (e.g., Fetch Food Nutrition)")
	description := cmd.String("description", "", "Description")
	category := cmd.String("category", "", "Category (e.g., nutrition)")
	taskType := cmd.String("taskType", "", "Zeebe task type; defaults to the ID")
	version := cmd.String("version", "1.0.0", "Version")
	status := cmd.String("status", registry.StatusPlanned, "Implementation Status (planned, in-progress, completed, verified)")
	timeout := cmd.String("timeout", "10s", "Job timeout")
	errorCodes := cmd.String("errorCodes", "", "Comma separated error codes")
	cmd.Parse(args)

	if *id == "" || *displayName == "" || *description == "" || *category == "" {
		cmd.Usage()
		return fmt.Errorf("id, displayName, description and category are required for add")
	}
	if *taskType == "" {
		*taskType = *id
	}

	reg, err := registry.LoadOrNew(*path)
	if err != nil {
		return fmt.Errorf("failed to load registry: %w", err)
	}
	activity := registry.Activity{
		ID:                   *id,
		DisplayName:          *displayName,
		Description:          *description,
		Category:             *category,
		Version:              *version,
		TaskType:             *taskType,
		ImplementationStatus: *status,
		Timeout:              *timeout,
		ErrorCodes:           splitList(*errorCodes),
	}
	if err := reg.Add(activity); err != nil {
		return err
	}
	if err := reg.Save(*path); err != nil {
		return err
	}
	fmt.Printf("Added activity: %s\n", *id)
	return nil
}

func runUpdate(args []string) error {
	cmd := flag.NewFlagSet("update", flag.ExitOnError)
	path := cmd.String("path", defaultRegistryPath, "Path to registry file")
	id := cmd.String("id", "", "Activity ID to update")
	field := cmd.String("field", "", "Field to update (status, version, timeout, retries, ...)")
	value := cmd.String("value", "", "New value for the field")
	cmd.Parse(args)

	if *id == "" || *field == "" || *value == "" {
		cmd.Usage()
		return fmt.Errorf("id, field and value are required for update")
	}

	reg, err := registry.LoadRegistry(*path)
	if err != nil {
		return fmt.Errorf("failed to load registry: %w", err)
	}
	if err := reg.Update(*id, *field, *value); err != nil {
		return err
	}
	if err := reg.Save(*path); err != nil {
		return err
	}
	fmt.Printf("Updated activity %s, field %s to %s\n", *id, *field, *value)
	return nil
}

func runList(args []string) error {
	cmd := flag.NewFlagSet("list", flag.ExitOnError)
	path := cmd.String("path", defaultRegistryPath, "Path to registry file")
	category := cmd.String("category", "", "Only list this category")
	cmd.Parse(args)

	reg, err := registry.LoadRegistry(*path)
	if err != nil {
		return fmt.Errorf("failed to load registry: %w", err)
	}

	activities := append([]registry.Activity(nil), reg.Activities...)
	sort.Slice(activities, func(i, j int) bool {
		if activities[i].Category != activities[j].Category {
			return activities[i].Category < activities[j].Category
		}
		return activities[i].ID < activities[j].ID
	})

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "CATEGORY\tTASK TYPE\tSTATUS\tTIMEOUT\tRETRIES")
	for _, a := range activities {
		if *category != "" && a.Category != *category {
			continue
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\n", a.Category, a.TaskType, a.ImplementationStatus, a.Timeout, a.Retries)
	}
	return w.Flush()
}

func runValidate(args []string) error {
	cmd := flag.NewFlagSet("validate", flag.ExitOnError)
	path := cmd.String("path", defaultRegistryPath, "Path to registry file")
	cmd.Parse(args)

	reg, err := registry.LoadRegistry(*path)
	if err != nil {
		return fmt.Errorf("failed to load registry: %w", err)
	}
	if err := reg.Validate(); err != nil {
		return fmt.Errorf("registry validation failed: %w", err)
	}
	fmt.Printf("Registry validation passed. Found %d activities.\n", len(reg.Activities))
	return nil
}

func splitList(s string) []string {
	out := []string{}
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func help() {
	fmt.Print(`
Usage: registry-updater <command> [flags]

Commands:
  add      Add a new activity to the registry
  update   Update an existing activity's field
  list     List activities
  validate Validate the registry file (required fields, timeouts, schemas)
  help     Show this help message

Examples:
  registry-updater add -id fetch-food-nutrition -displayName "Fetch Food Nutrition" -description "Looks up a food at a nutrition provider" -category nutrition
  registry-updater update -id fetch-food-nutrition -field status -value completed
  registry-updater list -category calculator
  registry-updater validate -path configs/activity-registry.json

Use 'registry-updater <command> -h' for more information about a command.
`)
}
