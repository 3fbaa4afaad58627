// build.go - NABII dashboard build system
// Usage: go run build.go [-target=TARGET]
// Targets: all, processor, web, data, clean, test, release

package main

import (
	"flag"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"time"
)

const versionPkg = "nabii/pkg/contracts"

var (
	rootDir string
	distDir string

	// Executable names (key = cmd dir name, value = output name)
	executables = map[string]string{
		"processor": "processor",
		"web":       "nabii-dashboard",
	}

	colorReset  = "\033[0m"
	colorRed    = "\033[31m"
	colorGreen  = "\033[32m"
	colorYellow = "\033[33m"
	colorBlue   = "\033[34m"
	colorCyan   = "\033[36m"
)

func init() {
	cwd, err := os.Getwd()
	if err != nil {
		panic(fmt.Sprintf("Failed to get current directory: %v", err))
	}
	rootDir = cwd
	distDir = filepath.Join(rootDir, "dist")

	if _, err := os.Stat(filepath.Join(rootDir, "go.mod")); os.IsNotExist(err) {
		panic(fmt.Sprintf("go.mod not found in %s, run the build from the repository root", rootDir))
	}
}

func main() {
	target := flag.String("target", "all", "Build target")
	verbose := flag.Bool("v", false, "Verbose output")
	flag.Parse()

	printHeader()
	startTime := time.Now()

	var err error
	switch *target {
	case "all":
		err = buildAll(*verbose)
	case "processor", "web":
		err = buildExecutable(*target, *verbose)
	case "data":
		err = generateData(*verbose)
	case "clean":
		err = clean(*verbose)
	case "test":
		err = runTests(*verbose)
	case "release":
		err = buildRelease(*verbose)
	default:
		showHelp()
		os.Exit(1)
	}
	if err != nil {
		printError(err.Error())
		os.Exit(1)
	}

	printSuccess(fmt.Sprintf("Build completed in %s", time.Since(startTime).Round(time.Millisecond)))
}

func printHeader() {
	fmt.Println(colorCyan + "===========================================" + colorReset)
	fmt.Println(colorCyan + "     NABII Dashboard - Build System        " + colorReset)
	fmt.Println(colorCyan + "===========================================" + colorReset)
	fmt.Println()
}

func printInfo(msg string) {
	fmt.Printf("%s[INFO]%s %s\n", colorBlue, colorReset, msg)
}

func printSuccess(msg string) {
	fmt.Printf("%s[SUCCESS]%s %s\n", colorGreen, colorReset, msg)
}

func printError(msg string) {
	fmt.Printf("%s[ERROR]%s %s\n", colorRed, colorReset, msg)
}

func printWarning(msg string) {
	fmt.Printf("%s[WARNING]%s %s\n", colorYellow, colorReset, msg)
}

func buildAll(verbose bool) error {
	printInfo("Building all components...")
	if err := os.MkdirAll(distDir, 0755); err != nil {
		return fmt.Errorf("failed to create %s: %w", distDir, err)
	}
	for name := range executables {
		if err := buildExecutable(name, verbose); err != nil {
			return err
		}
	}
	return copyStaticFiles(verbose)
}

// buildExecutable builds cmd/<name> into dist with the version stamped in
func buildExecutable(name string, verbose bool) error {
	output := executables[name]
	if runtime.GOOS == "windows" || os.Getenv("GOOS") == "windows" {
		output += ".exe"
	}
	printInfo(fmt.Sprintf("Building %s...", output))

	ldflags := fmt.Sprintf("-s -w -X %s.BuildTime=%s -X %s.GitCommit=%s",
		versionPkg, time.Now().UTC().Format(time.RFC3339),
		versionPkg, gitCommit())

	args := []string{"build", "-ldflags", ldflags, "-o", filepath.Join(distDir, output)}
	if verbose {
		args = append(args, "-v")
	}
	args = append(args, "./cmd/"+name)

	if err := runCommand(verbose, "go", args...); err != nil {
		return fmt.Errorf("failed to build %s: %w", name, err)
	}
	printSuccess(fmt.Sprintf("Built %s", output))
	return nil
}

// copyStaticFiles copies the dashboard pages next to the binaries
func copyStaticFiles(verbose bool) error {
	matches, err := filepath.Glob(filepath.Join(rootDir, "*.html"))
	if err != nil {
		return err
	}
	if len(matches) == 0 {
		printWarning("No dashboard pages found in the repository root")
		return nil
	}
	for _, src := range matches {
		data, err := os.ReadFile(src)
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", src, err)
		}
		dst := filepath.Join(distDir, filepath.Base(src))
		if err := os.WriteFile(dst, data, 0644); err != nil {
			return fmt.Errorf("failed to copy %s: %w", src, err)
		}
		if verbose {
			printInfo("Copied " + filepath.Base(src))
		}
	}
	return nil
}

// generateData runs the processor against the default dataset
func generateData(verbose bool) error {
	printInfo("Generating dashboard documents...")
	args := []string{"run", "./cmd/processor", "--no-progress"}
	if verbose {
		args = append(args, "--log-level", "debug")
	}
	return runCommand(true, "go", args...)
}

func clean(verbose bool) error {
	printInfo("Cleaning build artifacts...")
	for _, dir := range []string{distDir, filepath.Join(rootDir, "logs")} {
		if err := os.RemoveAll(dir); err != nil {
			return fmt.Errorf("failed to remove %s: %w", dir, err)
		}
		if verbose {
			printInfo("Removed " + dir)
		}
	}
	printSuccess("Build artifacts cleaned")
	return nil
}

func runTests(verbose bool) error {
	printInfo("Running Go tests...")
	args := []string{"test", "-race"}
	if verbose {
		args = append(args, "-v")
	}
	args = append(args, "./...")

	if err := runCommand(true, "go", args...); err != nil {
		return fmt.Errorf("go tests failed: %w", err)
	}
	printSuccess("All tests passed")
	return nil
}

func buildRelease(verbose bool) error {
	printInfo("Building release version...")
	if err := clean(verbose); err != nil {
		return err
	}
	os.Setenv("CGO_ENABLED", "0")
	if err := buildAll(verbose); err != nil {
		return err
	}

	content := fmt.Sprintf("NABII Dashboard\nCommit: %s\nBuilt: %s\n",
		gitCommit(), time.Now().Format("2006-01-02 15:04:05"))
	if err := os.WriteFile(filepath.Join(distDir, "VERSION.txt"), []byte(content), 0644); err != nil {
		return fmt.Errorf("failed to write VERSION.txt: %w", err)
	}
	printSuccess("Release build completed")
	return nil
}

func gitCommit() string {
	out, err := exec.Command("git", "rev-parse", "--short", "HEAD").Output()
	if err != nil {
		return "unknown"
	}
	return strings.TrimSpace(string(out))
}

func runCommand(stream bool, name string, args ...string) error {
	cmd := exec.Command(name, args...)
	cmd.Dir = rootDir
	if stream {
		cmd.Stdout = os.Stdout
		cmd.Stderr = os.Stderr
	}
	return cmd.Run()
}

func showHelp() {
	fmt.Println("Usage: go run build.go [-target=TARGET] [-v]")
	fmt.Println()
	fmt.Println("Targets:")
	fmt.Println("  all        Build the processor and the web server into dist/")
	fmt.Println("  processor  Build the processor")
	fmt.Println("  web        Build the web server")
	fmt.Println("  data       Run the processor on the default dataset")
	fmt.Println("  clean      Remove dist/ and logs/")
	fmt.Println("  test       Run the Go tests")
	fmt.Println("  release    Clean, build everything and write VERSION.txt")
}
