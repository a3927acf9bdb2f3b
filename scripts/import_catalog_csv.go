// Импорт каталога видео из CSV.
//
// Колонки: title,description,category,age_min,age_max,tags,filename,duration.
// Теги разделяются точкой с запятой. Импортированные видео считаются
// уже прошедшими модерацию.
package main

import (
	"context"
	"encoding/csv"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"unicode/utf8"

	"KinderTube/config"
	"KinderTube/logger"
	"KinderTube/models"
	"KinderTube/repositories/impl"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

// RowError описывает строку, которую не удалось разобрать
type RowError struct {
	Line int
	Err  error
}

func (e RowError) Error() string {
	return fmt.Sprintf("line %d: %v", e.Line, e.Err)
}

// parseCatalog читает CSV и возвращает готовые к сохранению видео.
// Плохие строки пропускаются и возвращаются отдельно.
func parseCatalog(r io.Reader, uploaderID uint) ([]models.Video, []RowError, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read header: %w", err)
	}
	index := make(map[string]int, len(header))
	for i, name := range header {
		index[strings.ToLower(strings.TrimSpace(name))] = i
	}
	for _, name := range []string{"title", "filename"} {
		if _, ok := index[name]; !ok {
			return nil, nil, fmt.Errorf("missing column %q", name)
		}
	}

	var videos []models.Video
	var rowErrs []RowError
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			var parseErr *csv.ParseError
			if errors.As(err, &parseErr) {
				rowErrs = append(rowErrs, RowError{Line: parseErr.StartLine, Err: parseErr.Err})
				continue
			}
			return nil, nil, err
		}
		line, _ := reader.FieldPos(0)
		field := func(name string) string {
			i, ok := index[name]
			if !ok || i >= len(record) {
				return ""
			}
			return strings.TrimSpace(record[i])
		}
		if strings.Join(record, "") == "" {
			continue
		}

		video, err := parseRow(field, uploaderID)
		if err != nil {
			rowErrs = append(rowErrs, RowError{Line: line, Err: err})
			continue
		}
		videos = append(videos, video)
	}
	return videos, rowErrs, nil
}

func parseRow(field func(string) string, uploaderID uint) (models.Video, error) {
	title := field("title")
	if title == "" || utf8.RuneCountInString(title) > 100 {
		return models.Video{}, errors.New("title must be 1 to 100 characters")
	}
	filename := field("filename")
	if filename == "" {
		return models.Video{}, errors.New("filename is required")
	}
	category, err := models.ParseCategory(field("category"))
	if err != nil {
		return models.Video{}, err
	}

	ageMin, err := intField(field("age_min"), 0)
	if err != nil {
		return models.Video{}, fmt.Errorf("age_min: %w", err)
	}
	ageMax, err := intField(field("age_max"), models.MaxAge)
	if err != nil {
		return models.Video{}, fmt.Errorf("age_max: %w", err)
	}
	if err := models.ValidateAgeRange(ageMin, ageMax); err != nil {
		return models.Video{}, err
	}
	duration, err := intField(field("duration"), 0)
	if err != nil || duration < 0 {
		return models.Video{}, errors.New("duration must be a non-negative number of seconds")
	}

	var tags []string
	for _, tag := range strings.Split(field("tags"), ";") {
		if tag = strings.TrimSpace(tag); tag != "" {
			tags = append(tags, tag)
		}
	}

	return models.Video{
		Title:       title,
		Description: field("description"),
		Category:    category,
		AgeMin:      ageMin,
		AgeMax:      ageMax,
		Tags:        tags,
		Filename:    filename,
		Duration:    duration,
		IsApproved:  true,
		IsPublic:    true,
		IsActive:    true,
		UploaderID:  uploaderID,
	}, nil
}

func intField(s string, fallback int) (int, error) {
	if s == "" {
		return fallback, nil
	}
	return strconv.Atoi(s)
}

func main() {
	path := flag.String("file", "catalog.csv", "path to the catalog CSV")
	uploader := flag.Uint("uploader", 0, "id of the admin account that owns imported videos")
	dryRun := flag.Bool("dry-run", false, "parse only, do not write to the database")
	flag.Parse()

	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		fmt.Fprintln(os.Stderr, "error loading .env file:", err)
	}
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	log := logger.New(cfg.LogLevel)

	if *uploader == 0 {
		log.Fatal("-uploader is required")
	}

	file, err := os.Open(*path)
	if err != nil {
		log.WithError(err).Fatal("failed to open catalog")
	}
	defer file.Close()

	videos, rowErrs, err := parseCatalog(file, uint(*uploader))
	if err != nil {
		log.WithError(err).Fatal("failed to parse catalog")
	}
	for _, rowErr := range rowErrs {
		log.WithField("line", rowErr.Line).WithError(rowErr.Err).Warn("row skipped")
	}
	if *dryRun {
		log.WithFields(logrus.Fields{"valid": len(videos), "skipped": len(rowErrs)}).Info("dry run finished")
		return
	}

	if err := config.InitDatabase(cfg, log); err != nil {
		log.WithError(err).Fatal("failed to initialize database")
	}
	videoRepo := impl.NewVideoRepository(config.DB)

	ctx := context.Background()
	imported := 0
	for i := range videos {
		if err := videoRepo.Create(ctx, &videos[i]); err != nil {
			log.WithError(err).WithField("title", videos[i].Title).Error("failed to import video")
			continue
		}
		imported++
	}

	log.WithFields(logrus.Fields{
		"imported": imported,
		"skipped":  len(rowErrs) + len(videos) - imported,
	}).Info("catalog import finished")
}
