package model

import "strings"

// SubmissionRequest carries one proof-of-delivery submission as received
// from the client. Image fields hold the raw data-URL strings; decoding
// happens during validation.
type SubmissionRequest struct {
	OrderNumber      string
	CustomerName     string
	PhotoDataURL     string
	SignatureDataURL string
}

// ImageData is a decoded embedded image: declared media type plus payload.
type ImageData struct {
	MediaType string
	Bytes     []byte
}

// Ext returns a filename extension for the image media type.
func (i ImageData) Ext() string {
	switch i.MediaType {
	case "image/jpeg", "image/jpg":
		return ".jpg"
	case "image/png":
		return ".png"
	case "image/gif":
		return ".gif"
	case "image/webp":
		return ".webp"
	default:
		if sub, ok := strings.CutPrefix(i.MediaType, "image/"); ok && sub != "" {
			return "." + sub
		}
		return ".bin"
	}
}

// ProofURLs holds the public URLs produced by one submission. SignatureURL
// is empty when the submission carried no signature.
type ProofURLs struct {
	PhotoURL     string
	SignatureURL string
}
