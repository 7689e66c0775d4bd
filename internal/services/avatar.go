package services

import (
  "bytes"
  "context"
  "encoding/json"
  "fmt"
  "image/color"
  "math/rand"
  "os"
  "strings"

  "github.com/fogleman/gg"
  "github.com/golang/freetype/truetype"
  "github.com/google/uuid"
  "golang.org/x/image/font"
  "gorm.io/gorm"

  "github.com/abdul-28930/MultilingualBudgerApp/internal/logger"
  "github.com/abdul-28930/MultilingualBudgerApp/internal/types"
)

const avatarSize = 512

// AvatarService renders an initials avatar for a new user and uploads it to
// the bucket.
type AvatarService interface {
  CreateAndUploadUserAvatar(ctx context.Context, tx *gorm.DB, user *types.User) error
}

type avatarService struct {
  log           *logger.Logger
  bucketService BucketService
  bgColors      []color.NRGBA
  fontFace      font.Face
}

func NewAvatarService(log *logger.Logger, bucketService BucketService) (AvatarService, error) {
  serviceLog := log.With("service", "AvatarService")

  //1) Get Font
  fontPath := os.Getenv("AVATAR_FONT")
  if fontPath == "" {
    return nil, fmt.Errorf("env var AVATAR_FONT is empty")
  }
  serviceLog.Info("Loading avatar font from TTF file", "font", fontPath)
  face, err := loadFontFace(fontPath, 206)
  if err != nil {
    return nil, fmt.Errorf("could not load avatar font: %w", err)
  }

  //2) Get Avatar Colors
  bgColors := defaultAvatarColors()
  if colorsJSONPath := os.Getenv("AVATAR_COLORS_JSON_PATH"); colorsJSONPath != "" {
    serviceLog.Info("Loading avatar colors from JSON file", "path", colorsJSONPath)
    loaded, cErr := loadColorsFromFile(colorsJSONPath)
    if cErr != nil {
      serviceLog.Warn("Could not load avatar colors, using built-in palette", "error", cErr)
    } else {
      bgColors = loaded
    }
  }

  return &avatarService{
    log:           serviceLog,
    bucketService: bucketService,
    bgColors:      bgColors,
    fontFace:      face,
  }, nil
}

func (as *avatarService) CreateAndUploadUserAvatar(ctx context.Context, tx *gorm.DB, user *types.User) error {
  buf, err := as.generateInitialsAvatar(user.Email)
  if err != nil {
    as.log.Warn("Failed to render user avatar, Cannot proceed. Returning error.", "error", err)
    return fmt.Errorf("failed to render user avatar: %w", err)
  }
  if as.bucketService == nil {
    as.log.Debug("No bucket service configured, skipping avatar upload")
    return nil
  }
  key := fmt.Sprintf("avatars/user/%s.png", uuid.New().String())
  url, err := as.bucketService.UploadObject(ctx, key, "image/png", buf.Bytes())
  if err != nil {
    as.log.Warn("Failed to upload user avatar, Cannot proceed. Returning error.", "error", err)
    return fmt.Errorf("failed to upload user avatar: %w", err)
  }
  user.AvatarBucketKey = key
  user.AvatarURL = url
  return nil
}

// generateInitialsAvatar draws the first letter of the email local part on a
// palette-colored square.
func (as *avatarService) generateInitialsAvatar(email string) (*bytes.Buffer, error) {
  initial := "?"
  if trimmed := strings.TrimSpace(email); trimmed != "" {
    initial = strings.ToUpper(string([]rune(trimmed)[0]))
  }
  bg := as.bgColors[rand.Intn(len(as.bgColors))]

  dc := gg.NewContext(avatarSize, avatarSize)
  dc.SetColor(bg)
  dc.Clear()
  dc.SetFontFace(as.fontFace)
  dc.SetColor(color.White)
  dc.DrawStringAnchored(initial, avatarSize/2, avatarSize/2, 0.5, 0.5)

  var buf bytes.Buffer
  if err := dc.EncodePNG(&buf); err != nil {
    return nil, fmt.Errorf("failed to encode avatar PNG: %w", err)
  }
  return &buf, nil
}

func loadFontFace(path string, points float64) (font.Face, error) {
  fontBytes, err := os.ReadFile(path)
  if err != nil {
    return nil, fmt.Errorf("failed to read font file '%s': %w", path, err)
  }
  parsed, err := truetype.Parse(fontBytes)
  if err != nil {
    return nil, fmt.Errorf("failed to parse font file '%s': %w", path, err)
  }
  return truetype.NewFace(parsed, &truetype.Options{Size: points}), nil
}

func loadColorsFromFile(path string) ([]color.NRGBA, error) {
  raw, err := os.ReadFile(path)
  if err != nil {
    return nil, fmt.Errorf("failed to read colors file '%s': %w", path, err)
  }
  var hexes []string
  if err := json.Unmarshal(raw, &hexes); err != nil {
    return nil, fmt.Errorf("failed to parse colors file '%s': %w", path, err)
  }
  var colors []color.NRGBA
  for _, hex := range hexes {
    c, pErr := parseHexColor(hex)
    if pErr != nil {
      return nil, pErr
    }
    colors = append(colors, c)
  }
  if len(colors) == 0 {
    return nil, fmt.Errorf("colors file '%s' holds no colors", path)
  }
  return colors, nil
}

func parseHexColor(hex string) (color.NRGBA, error) {
  hex = strings.TrimPrefix(strings.TrimSpace(hex), "#")
  if len(hex) != 6 {
    return color.NRGBA{}, fmt.Errorf("invalid hex color: '%s'", hex)
  }
  var r, g, b uint8
  if _, err := fmt.Sscanf(hex, "%02x%02x%02x", &r, &g, &b); err != nil {
    return color.NRGBA{}, fmt.Errorf("invalid hex color '%s': %w", hex, err)
  }
  return color.NRGBA{R: r, G: g, B: b, A: 255}, nil
}

func defaultAvatarColors() []color.NRGBA {
  return []color.NRGBA{
    {R: 0x2e, G: 0x86, B: 0xde, A: 255},
    {R: 0x10, G: 0xac, B: 0x84, A: 255},
    {R: 0xee, G: 0x52, B: 0x53, A: 255},
    {R: 0xf3, G: 0x9c, B: 0x12, A: 255},
    {R: 0x8e, G: 0x44, B: 0xad, A: 255},
    {R: 0x16, G: 0xa0, B: 0x85, A: 255},
  }
}
