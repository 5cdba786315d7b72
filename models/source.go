package models

import (
	"encoding/json"
	"fmt"
)

// SourceType classifies an evidentiary source
type SourceType string

const (
	SourceTypePrimary    SourceType = "primary"
	SourceTypeFactCheck  SourceType = "fact-check"
	SourceTypeAcademic   SourceType = "academic"
	SourceTypeGovernment SourceType = "government"
	SourceTypeMedia      SourceType = "media"
	SourceTypeSocial     SourceType = "social"
	SourceTypeOther      SourceType = "other"
)

// Valid reports whether t is a known source type
func (t SourceType) Valid() bool {
	switch t {
	case SourceTypePrimary, SourceTypeFactCheck, SourceTypeAcademic, SourceTypeGovernment,
		SourceTypeMedia, SourceTypeSocial, SourceTypeOther:
		return true
	}
	return false
}

// SocialPlatform is the hosting platform of a social source
type SocialPlatform string

const (
	PlatformYouTube   SocialPlatform = "youtube"
	PlatformTikTok    SocialPlatform = "tiktok"
	PlatformInstagram SocialPlatform = "instagram"
	PlatformTwitter   SocialPlatform = "twitter"
)

// SocialProfile carries the fields that only exist for social sources
type SocialProfile struct {
	Platform    SocialPlatform `json:"platform,omitempty"`
	CreatorName string         `json:"creatorName,omitempty"`
	ViewCount   *int64         `json:"viewCount,omitempty"`
	Thumbnail   string         `json:"thumbnail,omitempty"`
	IsVerified  *bool          `json:"isVerified,omitempty"`
}

func (p *SocialProfile) empty() bool {
	return p == nil || (p.Platform == "" && p.CreatorName == "" && p.ViewCount == nil &&
		p.Thumbnail == "" && p.IsVerified == nil)
}

// Source is one evidentiary reference. Social is only meaningful when
// Type is SourceTypeSocial; it is dropped on the wire for every other type.
type Source struct {
	ID               string         `json:"id" validate:"required"`
	Title            string         `json:"title"`
	URL              string         `json:"url"`
	Domain           string         `json:"domain"`
	CredibilityScore float64        `json:"credibilityScore" validate:"gte=0,lte=100"`
	RelevanceScore   *float64       `json:"relevanceScore,omitempty" validate:"omitempty,gte=0,lte=100"`
	PublishDate      string         `json:"publishDate,omitempty"`
	Excerpt          string         `json:"excerpt"`
	KeyFinding       string         `json:"keyFinding,omitempty"`
	Tier             int            `json:"tier" validate:"gte=1,lte=7"`
	Type             SourceType     `json:"type"`
	Social           *SocialProfile `json:"-"`
}

// sourceWire is the flat JSON form shared with the front-end
type sourceWire struct {
	ID               string         `json:"id"`
	Title            string         `json:"title"`
	URL              string         `json:"url"`
	Domain           string         `json:"domain"`
	CredibilityScore float64        `json:"credibilityScore"`
	RelevanceScore   *float64       `json:"relevanceScore,omitempty"`
	PublishDate      string         `json:"publishDate,omitempty"`
	Excerpt          string         `json:"excerpt"`
	KeyFinding       string         `json:"keyFinding,omitempty"`
	Tier             int            `json:"tier"`
	Type             SourceType     `json:"type"`
	Platform         SocialPlatform `json:"platform,omitempty"`
	CreatorName      string         `json:"creatorName,omitempty"`
	ViewCount        *int64         `json:"viewCount,omitempty"`
	Thumbnail        string         `json:"thumbnail,omitempty"`
	IsVerified       *bool          `json:"isVerified,omitempty"`
}

// MarshalJSON flattens the social profile onto social sources only
func (s Source) MarshalJSON() ([]byte, error) {
	w := sourceWire{
		ID:               s.ID,
		Title:            s.Title,
		URL:              s.URL,
		Domain:           s.Domain,
		CredibilityScore: s.CredibilityScore,
		RelevanceScore:   s.RelevanceScore,
		PublishDate:      s.PublishDate,
		Excerpt:          s.Excerpt,
		KeyFinding:       s.KeyFinding,
		Tier:             s.Tier,
		Type:             s.Type,
	}
	if s.Type == SourceTypeSocial && s.Social != nil {
		w.Platform = s.Social.Platform
		w.CreatorName = s.Social.CreatorName
		w.ViewCount = s.Social.ViewCount
		w.Thumbnail = s.Social.Thumbnail
		w.IsVerified = s.Social.IsVerified
	}
	return json.Marshal(w)
}

// UnmarshalJSON ignores social-only keys on non-social sources
func (s *Source) UnmarshalJSON(data []byte) error {
	var w sourceWire
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	if w.Type != "" && !w.Type.Valid() {
		return fmt.Errorf("unknown source type: %q", w.Type)
	}

	*s = Source{
		ID:               w.ID,
		Title:            w.Title,
		URL:              w.URL,
		Domain:           w.Domain,
		CredibilityScore: w.CredibilityScore,
		RelevanceScore:   w.RelevanceScore,
		PublishDate:      w.PublishDate,
		Excerpt:          w.Excerpt,
		KeyFinding:       w.KeyFinding,
		Tier:             w.Tier,
		Type:             w.Type,
	}
	if w.Type == SourceTypeSocial {
		profile := &SocialProfile{
			Platform:    w.Platform,
			CreatorName: w.CreatorName,
			ViewCount:   w.ViewCount,
			Thumbnail:   w.Thumbnail,
			IsVerified:  w.IsVerified,
		}
		if !profile.empty() {
			s.Social = profile
		}
	}
	return nil
}
