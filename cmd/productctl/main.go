package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"catalogo/internal/catalog"
)

func main() {
	var (
		apiFlag         string
		imageFlag       string
		nameFlag        string
		descriptionFlag string
		priceFlag       float64
		stockFlag       int
		digitalFlag     bool
		transformFlag   bool
		promptFlag      string
		presetFlag      string
		timeoutFlag     time.Duration
	)
	flag.StringVar(&apiFlag, "api", "http://localhost:8080", "Base URL of the catalog API")
	flag.StringVar(&imageFlag, "image", "", "Path to the product image (optional)")
	flag.StringVar(&nameFlag, "name", "", "Product name")
	flag.StringVar(&descriptionFlag, "description", "", "Product description")
	flag.Float64Var(&priceFlag, "price", 0, "Product price")
	flag.IntVar(&stockFlag, "stock", 0, "Product stock (forced to 0 for digital products)")
	flag.BoolVar(&digitalFlag, "digital", false, "Mark the product as digital")
	flag.BoolVar(&transformFlag, "transform", false, "Enhance the image with the AI transform before submitting")
	flag.StringVar(&promptFlag, "prompt", "", "Custom edit prompt (defaults to the conservative enhancement)")
	flag.StringVar(&presetFlag, "preset", "", "Preset prompt label (overridden by -prompt)")
	flag.DurationVar(&timeoutFlag, "timeout", 3*time.Minute, "Overall timeout for the submission")
	flag.Parse()

	if strings.TrimSpace(nameFlag) == "" {
		fmt.Fprintln(os.Stderr, "-name is required")
		os.Exit(1)
	}
	if priceFlag <= 0 {
		fmt.Fprintln(os.Stderr, "-price must be greater than zero")
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), timeoutFlag)
	defer cancel()

	controller := catalog.NewController(catalog.NewAPIClient(apiFlag, nil))

	if imageFlag != "" {
		image, err := readImage(imageFlag)
		if err != nil {
			fmt.Fprintf(os.Stderr, "read image: %v\n", err)
			os.Exit(1)
		}
		controller.SelectImage(image)
	}

	if transformFlag {
		if prompt := resolvePrompt(promptFlag, presetFlag); prompt != "" {
			controller.SetPrompt(prompt)
		}
		if err := controller.RequestTransform(ctx); err != nil {
			fmt.Fprintf(os.Stderr, "transform failed: %v\n", err)
			os.Exit(1)
		}
		if res := controller.Result(); res != nil {
			fmt.Printf("transformed image stored at %s\n", res.Path)
		}
	}

	err := controller.SubmitProduct(ctx, catalog.Product{
		Name:        strings.TrimSpace(nameFlag),
		Description: strings.TrimSpace(descriptionFlag),
		Price:       priceFlag,
		Stock:       stockFlag,
		IsDigital:   digitalFlag,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "create product: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("product %q created\n", nameFlag)
}

func resolvePrompt(prompt, preset string) string {
	if strings.TrimSpace(prompt) != "" {
		return prompt
	}
	if preset != "" {
		p, ok := catalog.PresetByLabel(preset)
		if !ok {
			fmt.Fprintf(os.Stderr, "unknown preset %q; available:\n", preset)
			for _, candidate := range catalog.Presets {
				fmt.Fprintf(os.Stderr, "  %s\n", candidate.Label)
			}
			os.Exit(1)
		}
		return p.Prompt
	}
	return ""
}

func readImage(path string) (catalog.SelectedImage, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return catalog.SelectedImage{}, err
	}
	mimeType := mimeForExtension(filepath.Ext(path))
	if mimeType == "" {
		mimeType = http.DetectContentType(data)
	}
	return catalog.SelectedImage{
		Name: filepath.Base(path),
		Data: data,
		MIME: mimeType,
	}, nil
}

func mimeForExtension(ext string) string {
	switch strings.ToLower(ext) {
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".png":
		return "image/png"
	case ".webp":
		return "image/webp"
	case ".gif":
		return "image/gif"
	}
	return ""
}
