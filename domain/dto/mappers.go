package dto

import (
	"encoding/json"
	"fmt"

	"photocritic/domain/critique"
	"photocritic/domain/models"
)

func UserToUserResponse(user *models.User) *UserResponse {
	if user == nil {
		return nil
	}
	return &UserResponse{
		ID:          user.ID,
		Email:       user.Email,
		DisplayName: user.DisplayName,
		Avatar:      user.Avatar,
		Bio:         user.Bio,
		SocialLinks: socialLinks(user),
		Role:        user.Role,
		Provider:    user.Provider,
		LastLoginAt: user.LastLoginAt,
		CreatedAt:   user.CreatedAt,
	}
}

func UserToPublicResponse(user *models.User) *PublicUserResponse {
	if user == nil {
		return nil
	}
	return &PublicUserResponse{
		ID:          user.ID,
		DisplayName: user.DisplayName,
		Avatar:      user.Avatar,
		Bio:         user.Bio,
		SocialLinks: socialLinks(user),
		CreatedAt:   user.CreatedAt,
	}
}

func socialLinks(user *models.User) map[string]string {
	links := make(map[string]string, len(user.SocialLinks))
	for k, v := range user.SocialLinks {
		links[k] = fmt.Sprint(v)
	}
	return links
}

// imageFields returns the URL and, only when there is no URL, the inline data.
func imageFields(loc models.ImageLocation) (url, data string) {
	if loc.URL != "" {
		return loc.URL, ""
	}
	return "", loc.InlineData
}

func PhotoToPhotoResponse(photo *models.Photo) *PhotoResponse {
	if photo == nil {
		return nil
	}
	url, data := imageFields(photo.Location)
	resp := &PhotoResponse{
		ID:               photo.ID,
		UserID:           photo.UserID,
		OriginalFilename: photo.OriginalFilename,
		MimeType:         photo.MimeType,
		Width:            photo.Width,
		Height:           photo.Height,
		FileSize:         photo.FileSize,
		StorageBackend:   string(photo.Location.Backend),
		ImageURL:         url,
		ImageData:        data,
		CameraMake:       photo.CameraMake,
		CameraModel:      photo.CameraModel,
		DetectedGenre:    photo.DetectedGenre,
		IsHidden:         photo.IsHidden,
		CreatedAt:        photo.CreatedAt,
	}
	if len(photo.Exif) > 0 && json.Valid(photo.Exif) {
		resp.Exif = json.RawMessage(photo.Exif)
	}
	return resp
}

// AnalysisToResult rebuilds the critique of a stored analysis from an
// already decoded payload.
func AnalysisToResult(a *models.Analysis, payload critique.Payload) critique.Result {
	res := critique.Result{
		DetectedGenre:  a.DetectedGenre,
		Summary:        a.Summary,
		OverallScore:   a.OverallScore,
		CategoryScores: a.CategoryScores.Data(),
		Tags:           append([]string{}, a.Tags...),
		Analysis:       payload,
		IsNotEvaluable: a.IsNotEvaluable,
		Persona:        a.Persona,
		Language:       a.Language,
	}
	if a.IsNotEvaluable {
		res.Reason = critique.ReasonModelDeclined
	}
	return res
}

func AnalysisToResponse(a *models.Analysis, payload critique.Payload) *AnalysisResponse {
	id := a.ID
	createdAt := a.CreatedAt
	return &AnalysisResponse{
		ID:          &id,
		PhotoID:     a.PhotoID,
		UserID:      a.UserID,
		Result:      AnalysisToResult(a, payload),
		CameraMake:  a.CameraMake,
		CameraModel: a.CameraModel,
		IsHidden:    a.IsHidden,
		Persisted:   true,
		CreatedAt:   &createdAt,
	}
}

// AnalysisToCard builds a list card. Photo must be preloaded; strengths and
// improvements go through the extraction chain so historic payloads still
// render.
func AnalysisToCard(a *models.Analysis) PhotoCard {
	card := PhotoCard{
		AnalysisID:     a.ID,
		PhotoID:        a.PhotoID,
		UserID:         a.UserID,
		CameraMake:     a.CameraMake,
		CameraModel:    a.CameraModel,
		DetectedGenre:  a.DetectedGenre,
		Summary:        a.Summary,
		OverallScore:   a.OverallScore,
		CategoryScores: a.CategoryScores.Data(),
		Tags:           append([]string{}, a.Tags...),
		Persona:        a.Persona,
		Language:       a.Language,
		Strengths:      critique.ExtractStrengths(a.Payload),
		Improvements:   critique.ExtractImprovements(a.Payload),
		IsHidden:       a.IsHidden,
		IsNotEvaluable: a.IsNotEvaluable,
		CreatedAt:      a.CreatedAt,
	}
	if p := a.Photo; p != nil {
		card.ImageURL, card.ImageData = imageFields(p.Location)
		card.OriginalFilename = p.OriginalFilename
		card.Width = p.Width
		card.Height = p.Height
		card.IsHidden = card.IsHidden || p.IsHidden
	}
	return card
}

func AnalysesToCards(analyses []models.Analysis) []PhotoCard {
	cards := make([]PhotoCard, len(analyses))
	for i := range analyses {
		cards[i] = AnalysisToCard(&analyses[i])
	}
	return cards
}

func OpinionToResponse(o *models.Opinion) OpinionResponse {
	resp := OpinionResponse{
		ID:         o.ID,
		AnalysisID: o.AnalysisID,
		UserID:     o.UserID,
		Liked:      o.Liked,
		Comment:    o.Comment,
		CreatedAt:  o.CreatedAt,
		UpdatedAt:  o.UpdatedAt,
	}
	if o.User != nil {
		resp.DisplayName = o.User.DisplayName
	}
	return resp
}

func PersonasToResponse(personas []critique.Persona) []PersonaResponse {
	out := make([]PersonaResponse, len(personas))
	for i, p := range personas {
		out[i] = PersonaResponse{Key: p.Key, Name: p.Name, Description: p.Description}
	}
	return out
}
