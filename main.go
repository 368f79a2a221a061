// Package main provides the entry point for the stegano CLI.
//
// stegano hides a black-and-white secret image in the least significant bit
// of one colour channel of a cover image, extracts it again, and splits
// images into their bit-planes for inspection.
//
// Usage:
//
//	stegano embed --cover cover.png --secret secret.png --output stego.png
//	stegano extract --input stego.png --secret-out secret.png --cover-out cover.png
//	stegano planes --input stego.png --output-dir bit_layers
//	stegano serve
//
// See --help for all available options.
package main

func main() {
	Execute()
}
