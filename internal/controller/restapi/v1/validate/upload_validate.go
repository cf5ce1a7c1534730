package validate

// Exactly jpeg and png; everything else is a client error.
var AllowedContentTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
}
