// Command analyze submits an image to a running RiceGuard server and prints
// the grain quality metrics.
package main

import (
	"context"
	"encoding/base64"
	"flag"
	"fmt"
	"os"

	"github.com/riceguard/backend/internal/client"
)

func main() {
	server := flag.String("server", "http://localhost:8000", "RiceGuard server base URL")
	out := flag.String("out", "", "optional path to write the annotated image (JPEG)")
	flag.Parse()

	if flag.NArg() != 1 {
		fmt.Fprintf(os.Stderr, "usage: %s [flags] <image>\n", os.Args[0])
		flag.PrintDefaults()
		os.Exit(2)
	}

	c := client.New(*server)
	result, err := c.AnalyzeFile(context.Background(), flag.Arg(0))
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Total grains:    %d\n", result.TotalGrains)
	fmt.Printf("Whole grains:    %d\n", result.WholeGrains)
	fmt.Printf("Broken grains:   %d\n", result.BrokenGrains)
	fmt.Printf("Broken:          %.1f%%\n", result.BrokenPercentage)
	fmt.Printf("Avg confidence:  %.3f\n", result.AvgModelConfidence)

	if *out != "" {
		annotated, err := base64.StdEncoding.DecodeString(result.ProcessedImage)
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to decode annotated image: %v\n", err)
			os.Exit(1)
		}
		if err := os.WriteFile(*out, annotated, 0644); err != nil {
			fmt.Fprintf(os.Stderr, "failed to write annotated image: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Annotated image: %s\n", *out)
	}
}
