package shopify

import (
	"context"
	"fmt"
	"html"
	"strings"

	"github.com/courierlabs/podproof/internal/config"
	"github.com/courierlabs/podproof/internal/domain/model"
)

// Metafield keys used to persist proof URLs on the order.
const (
	MetafieldKeyPhoto     = "delivery_image"
	MetafieldKeySignature = "delivery_signature"
)

// CommentRecorder writes proof URLs back as one order timeline comment.
type CommentRecorder struct {
	client   *Client
	format   config.CommentFormat
	encoding config.CommentEncoding
}

// NewCommentRecorder constructs CommentRecorder.
func NewCommentRecorder(client *Client, format config.CommentFormat, encoding config.CommentEncoding) *CommentRecorder {
	return &CommentRecorder{client: client, format: format, encoding: encoding}
}

// Record composes the comment body and posts exactly one timeline event.
func (r *CommentRecorder) Record(ctx context.Context, orderID int64, customerName string, urls model.ProofURLs) error {
	var body string
	if r.format == config.CommentText {
		body = renderTextComment(customerName, urls)
	} else {
		body = renderHTMLComment(customerName, urls)
	}
	return r.client.CreateOrderEvent(ctx, orderID, body, r.encoding)
}

func renderHTMLComment(customerName string, urls model.ProofURLs) string {
	var b strings.Builder
	fmt.Fprintf(&b, "<p><strong>Proof of Delivery for %s</strong></p>", html.EscapeString(customerName))
	fmt.Fprintf(&b, `<p><a href="%s" target="_blank">View Photo</a></p>`, urls.PhotoURL)
	if urls.SignatureURL != "" {
		fmt.Fprintf(&b, `<p><a href="%s" target="_blank">View Signature</a></p>`, urls.SignatureURL)
	}
	return b.String()
}

func renderTextComment(customerName string, urls model.ProofURLs) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Proof of Delivery for %s\n", customerName)
	fmt.Fprintf(&b, "Photo: %s", urls.PhotoURL)
	if urls.SignatureURL != "" {
		fmt.Fprintf(&b, "\nSignature: %s", urls.SignatureURL)
	}
	return b.String()
}

// MetafieldRecorder writes proof URLs back as named metafields, one upsert
// call per field. Field writes are independent: a failure on the signature
// field does not roll back the photo field.
type MetafieldRecorder struct {
	client    *Client
	namespace string
}

// NewMetafieldRecorder constructs MetafieldRecorder.
func NewMetafieldRecorder(client *Client, namespace string) *MetafieldRecorder {
	return &MetafieldRecorder{client: client, namespace: namespace}
}

// Record upserts delivery_image and, when present, delivery_signature.
func (r *MetafieldRecorder) Record(ctx context.Context, orderID int64, _ string, urls model.ProofURLs) error {
	if err := r.client.UpsertMetafield(ctx, orderID, r.namespace, MetafieldKeyPhoto, urls.PhotoURL); err != nil {
		return err
	}
	if urls.SignatureURL != "" {
		if err := r.client.UpsertMetafield(ctx, orderID, r.namespace, MetafieldKeySignature, urls.SignatureURL); err != nil {
			return err
		}
	}
	return nil
}
