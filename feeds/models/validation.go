package models

import (
	"fmt"
	"strings"
)

const (
	MaxDescriptionLength = 5000
	MaxImagesPerRequest  = 20
	MaxImageURLLength    = 2048
)

// Validate checks a create request
func (r *CreateFeedRequest) Validate() error {
	if r == nil {
		return fmt.Errorf("request is required")
	}
	if err := validateDescription(r.Description); err != nil {
		return err
	}
	if len(r.Images) == 0 {
		return nil
	}
	return validateImageURLs(r.Images)
}

// Validate checks an update request
func (r *UpdateFeedRequest) Validate() error {
	if r == nil {
		return fmt.Errorf("request is required")
	}
	return validateDescription(r.Description)
}

// Validate checks an add-images request
func (r *AddFeedImagesRequest) Validate() error {
	if r == nil {
		return fmt.Errorf("request is required")
	}
	if len(r.Images) == 0 {
		return fmt.Errorf("images must not be empty")
	}
	return validateImageURLs(r.Images)
}

// Validate checks an image update request
func (r *UpdateFeedImageRequest) Validate() error {
	if r == nil {
		return fmt.Errorf("request is required")
	}
	return validateImageURL(r.URL)
}

func validateDescription(description string) error {
	if strings.TrimSpace(description) == "" {
		return fmt.Errorf("description is required")
	}
	if len(description) > MaxDescriptionLength {
		return fmt.Errorf("description must be at most %d characters", MaxDescriptionLength)
	}
	return nil
}

func validateImageURLs(urls []string) error {
	if len(urls) > MaxImagesPerRequest {
		return fmt.Errorf("at most %d images are allowed per request", MaxImagesPerRequest)
	}
	for i, url := range urls {
		if err := validateImageURL(url); err != nil {
			return fmt.Errorf("images[%d]: %w", i, err)
		}
	}
	return nil
}

func validateImageURL(url string) error {
	if strings.TrimSpace(url) == "" {
		return fmt.Errorf("image url is required")
	}
	if len(url) > MaxImageURLLength {
		return fmt.Errorf("image url must be at most %d characters", MaxImageURLLength)
	}
	return nil
}
