package llm

import "fmt"

// ImageFormat selects how an image is embedded in a provider request.
type ImageFormat string

const (
	// ImageFormatOpenAI embeds the image as a data URL.
	ImageFormatOpenAI ImageFormat = "openai"
	// ImageFormatAnthropic embeds the image as a typed base64 source object.
	ImageFormatAnthropic ImageFormat = "anthropic"
)

// ImagePayload is the JSON fragment describing an image to a provider.
// Exactly one of ImageURL and Source is set, depending on the format.
type ImagePayload struct {
	Type     string       `json:"type"`
	ImageURL *ImageURL    `json:"image_url,omitempty"`
	Source   *ImageSource `json:"source,omitempty"`
}

// ImageURL carries a data URL.
type ImageURL struct {
	URL string `json:"url"`
}

// ImageSource carries base64 image data with its media type.
type ImageSource struct {
	Type      string `json:"type"`
	MediaType string `json:"media_type"`
	Data      string `json:"data"`
}

// ConvertImage encodes an image content item in the given provider format.
func ConvertImage(image Content, format ImageFormat) ImagePayload {
	if format == ImageFormatAnthropic {
		return ImagePayload{
			Type: "image",
			Source: &ImageSource{
				Type:      "base64",
				MediaType: image.MIMEType,
				Data:      image.Data,
			},
		}
	}
	return ImagePayload{
		Type: "image_url",
		ImageURL: &ImageURL{
			URL: fmt.Sprintf("data:%s;base64,%s", image.MIMEType, image.Data),
		},
	}
}
