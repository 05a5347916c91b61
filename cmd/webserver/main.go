package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"questiongenerator"

	"github.com/gorilla/sessions"
)

type Server struct {
	store     *questiongenerator.Store
	sessions  *sessions.CookieStore
	generator *questiongenerator.QuestionGenerator
	cfg       questiongenerator.Config
}

func main() {
	var (
		configFile = flag.String("config", "", "Path to a YAML config file")
		verbose    = flag.Bool("verbose", false, "Enable verbose debugging output")
	)
	flag.Parse()

	questiongenerator.SetVerbose(*verbose)

	cfg, err := questiongenerator.LoadConfig(*configFile)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if cfg.SessionSecret == "" {
		log.Fatal("session_secret must be set in the config file")
	}

	store, err := questiongenerator.OpenStore(cfg.DatabasePath)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer store.Close()

	if err := store.CreateTables(); err != nil {
		log.Fatalf("Failed to create tables: %v", err)
	}

	server := &Server{
		store:     store,
		sessions:  sessions.NewCookieStore([]byte(cfg.SessionSecret)),
		generator: questiongenerator.NewGeneratorFromConfig(cfg),
		cfg:       cfg,
	}

	http.HandleFunc("/api/register", server.handleRegister)
	http.HandleFunc("/api/login", server.handleLogin)
	http.HandleFunc("/api/logout", server.handleLogout)
	http.HandleFunc("/api/subjects", server.handleSubjects)
	http.HandleFunc("/api/topics", server.handleTopics)
	http.HandleFunc("/api/questions", server.handleQuestions)
	http.HandleFunc("/api/generate", server.handleGenerate)
	http.HandleFunc("/api/generate-from-document", server.handleGenerateFromDocument)
	http.HandleFunc("/api/papers", server.handlePapers)
	http.HandleFunc("/api/question-sets", server.handleQuestionSets)
	http.HandleFunc("/api/question-sets/", server.handleQuestionSet)

	log.Printf("Starting webserver on %s", cfg.ListenAddr)
	log.Fatal(http.ListenAndServe(cfg.ListenAddr, nil))
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("Failed to encode response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

// currentUser returns the logged-in user's ID, or 0 if the session is
// missing or anonymous.
func (s *Server) currentUser(r *http.Request) int64 {
	session, err := s.sessions.Get(r, "qg_session")
	if err != nil {
		return 0
	}
	userID, ok := session.Values["user_id"].(int64)
	if !ok {
		return 0
	}
	return userID
}

func (s *Server) requireUser(w http.ResponseWriter, r *http.Request) (int64, bool) {
	userID := s.currentUser(r)
	if userID == 0 {
		writeError(w, http.StatusUnauthorized, "authentication required")
		return 0, false
	}
	return userID, true
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var body struct {
		Username string `json:"username"`
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if body.Username == "" || body.Password == "" {
		writeError(w, http.StatusBadRequest, "username and password are required")
		return
	}

	user, err := s.store.CreateUser(body.Username, body.Email, body.Password)
	if err != nil {
		writeError(w, http.StatusConflict, fmt.Sprintf("failed to create user: %v", err))
		return
	}
	writeJSON(w, http.StatusCreated, user)
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var body struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	user, err := s.store.Authenticate(body.Username, body.Password)
	if err != nil {
		writeError(w, http.StatusUnauthorized, "invalid credentials")
		return
	}

	session, _ := s.sessions.Get(r, "qg_session")
	session.Values["user_id"] = user.ID
	if err := session.Save(r, w); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to save session")
		return
	}
	writeJSON(w, http.StatusOK, user)
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	session, _ := s.sessions.Get(r, "qg_session")
	delete(session.Values, "user_id")
	session.Options.MaxAge = -1
	session.Save(r, w)
	writeJSON(w, http.StatusOK, map[string]string{"status": "logged out"})
}

func (s *Server) handleSubjects(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.requireUser(w, r)
	if !ok {
		return
	}

	switch r.Method {
	case http.MethodGet:
		subjects, err := s.store.GetSubjects(userID)
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		writeJSON(w, http.StatusOK, subjects)

	case http.MethodPost:
		var body struct {
			Name        string `json:"name"`
			Description string `json:"description"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.Name == "" {
			writeError(w, http.StatusBadRequest, "subject name is required")
			return
		}
		subject, err := s.store.CreateSubject(body.Name, body.Description, userID)
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		writeJSON(w, http.StatusCreated, subject)

	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func (s *Server) handleTopics(w http.ResponseWriter, r *http.Request) {
	if _, ok := s.requireUser(w, r); !ok {
		return
	}

	switch r.Method {
	case http.MethodGet:
		subjectID, err := strconv.ParseInt(r.URL.Query().Get("subject_id"), 10, 64)
		if err != nil {
			writeError(w, http.StatusBadRequest, "subject_id query parameter is required")
			return
		}
		topics, err := s.store.GetTopics(subjectID)
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		writeJSON(w, http.StatusOK, topics)

	case http.MethodPost:
		var body struct {
			Name      string `json:"name"`
			SubjectID int64  `json:"subject_id"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.Name == "" || body.SubjectID == 0 {
			writeError(w, http.StatusBadRequest, "topic name and subject_id are required")
			return
		}
		topic, err := s.store.CreateTopic(body.Name, body.SubjectID)
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		writeJSON(w, http.StatusCreated, topic)

	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

// generateRequest is the shared payload of the generation endpoints: JSON
// body on /api/generate, form fields plus an uploaded document on
// /api/generate-from-document.
type generateRequest struct {
	Context          string   `json:"context"`
	SubjectID        int64    `json:"subject_id"`
	TopicID          int64    `json:"topic_id,omitempty"`
	TaxonomyLevels   []string `json:"taxonomy_levels,omitempty"`
	DifficultyLevels []string `json:"difficulty_levels,omitempty"`
	NumQuestions     int      `json:"num_questions"`
	UseRemote        bool     `json:"use_remote,omitempty"`
	Save             bool     `json:"save,omitempty"`
	SetTitle         string   `json:"set_title,omitempty"`
}

func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.requireUser(w, r)
	if !ok {
		return
	}
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var body generateRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	s.runGeneration(w, r, userID, body)
}

// handleGenerateFromDocument accepts a multipart upload (field "document",
// plain text or PDF), extracts its text and runs the same generation flow as
// /api/generate with the extracted text as context.
func (s *Server) handleGenerateFromDocument(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.requireUser(w, r)
	if !ok {
		return
	}
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	if err := r.ParseMultipartForm(32 << 20); err != nil {
		writeError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}
	file, header, err := r.FormFile("document")
	if err != nil {
		writeError(w, http.StatusBadRequest, "document file is required")
		return
	}
	defer file.Close()

	// ExtractText routes on the file extension, so keep it on the temp copy.
	tmp, err := os.CreateTemp("", "upload-*"+filepath.Ext(header.Filename))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to store upload")
		return
	}
	defer os.Remove(tmp.Name())
	if _, err := io.Copy(tmp, file); err != nil {
		tmp.Close()
		writeError(w, http.StatusInternalServerError, "failed to store upload")
		return
	}
	tmp.Close()

	text, err := questiongenerator.ExtractText(tmp.Name())
	if err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("failed to extract text: %v", err))
		return
	}

	body := generateRequest{
		Context:      text,
		SubjectID:    parseFormInt(r, "subject_id"),
		TopicID:      parseFormInt(r, "topic_id"),
		NumQuestions: int(parseFormInt(r, "num_questions")),
		UseRemote:    r.FormValue("use_remote") == "true",
		Save:         r.FormValue("save") == "true",
		SetTitle:     r.FormValue("set_title"),
	}
	if levels := r.FormValue("taxonomy_levels"); levels != "" {
		body.TaxonomyLevels = strings.Split(levels, ",")
	}
	if levels := r.FormValue("difficulty_levels"); levels != "" {
		body.DifficultyLevels = strings.Split(levels, ",")
	}
	if body.NumQuestions == 0 {
		body.NumQuestions = 10
	}

	s.runGeneration(w, r, userID, body)
}

func parseFormInt(r *http.Request, name string) int64 {
	v, _ := strconv.ParseInt(r.FormValue(name), 10, 64)
	return v
}

// runGeneration resolves names, runs the engine and optionally persists the
// results as a question set.
func (s *Server) runGeneration(w http.ResponseWriter, r *http.Request, userID int64, body generateRequest) {
	subject, err := s.store.GetSubject(body.SubjectID)
	if err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	topicName := ""
	if body.TopicID > 0 {
		topic, err := s.store.GetTopic(body.TopicID)
		if err != nil {
			writeError(w, http.StatusNotFound, err.Error())
			return
		}
		topicName = topic.Name
	}

	req := questiongenerator.GenerationRequest{
		Context:      body.Context,
		Subject:      subject.Name,
		Topic:        topicName,
		NumQuestions: body.NumQuestions,
		UseRemote:    body.UseRemote,
	}
	for _, level := range body.TaxonomyLevels {
		parsed, ok := questiongenerator.ParseTaxonomyLevel(level)
		if !ok {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("unknown taxonomy level: %s", level))
			return
		}
		req.TaxonomyLevels = append(req.TaxonomyLevels, parsed)
	}
	for _, level := range body.DifficultyLevels {
		parsed, ok := questiongenerator.ParseDifficultyLevel(level)
		if !ok {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("unknown difficulty level: %s", level))
			return
		}
		req.DifficultyLevels = append(req.DifficultyLevels, parsed)
	}

	generationID := questiongenerator.GenerationID()
	if logger, err := questiongenerator.NewLLMLogger(generationID, req); err == nil {
		questiongenerator.SetGlobalLogger(logger)
		defer func() {
			questiongenerator.SetGlobalLogger(nil)
			logger.Close()
		}()
	} else {
		log.Printf("Failed to create transcript logger for %s: %v", generationID, err)
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Minute)
	defer cancel()

	records, err := s.generator.GenerateQuestionSet(ctx, req)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	response := map[string]interface{}{
		"generation_id": generationID,
		"questions":     records,
	}

	if body.Save {
		ids, err := s.store.SaveQuestions(records, body.SubjectID, body.TopicID)
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		title := body.SetTitle
		if title == "" {
			title = fmt.Sprintf("%s question set %s", subject.Name, generationID)
		}
		set, err := s.store.CreateQuestionSet(userID, title, "", ids)
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		response["question_set"] = set
	}

	writeJSON(w, http.StatusOK, response)
}

// handleQuestions serves the stored question bank: GET lists a subject's
// questions with optional taxonomy/difficulty filters, POST files a
// hand-written question alongside the generated ones.
func (s *Server) handleQuestions(w http.ResponseWriter, r *http.Request) {
	if _, ok := s.requireUser(w, r); !ok {
		return
	}

	switch r.Method {
	case http.MethodGet:
		subjectID, err := strconv.ParseInt(r.URL.Query().Get("subject_id"), 10, 64)
		if err != nil {
			writeError(w, http.StatusBadRequest, "subject_id query parameter is required")
			return
		}
		taxonomy := r.URL.Query().Get("taxonomy_level")
		if taxonomy != "" {
			parsed, ok := questiongenerator.ParseTaxonomyLevel(taxonomy)
			if !ok {
				writeError(w, http.StatusBadRequest, fmt.Sprintf("unknown taxonomy level: %s", taxonomy))
				return
			}
			taxonomy = string(parsed)
		}
		difficulty := r.URL.Query().Get("difficulty")
		if difficulty != "" {
			parsed, ok := questiongenerator.ParseDifficultyLevel(difficulty)
			if !ok {
				writeError(w, http.StatusBadRequest, fmt.Sprintf("unknown difficulty level: %s", difficulty))
				return
			}
			difficulty = string(parsed)
		}
		limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

		questions, err := s.store.GetQuestions(subjectID, taxonomy, difficulty, limit)
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		writeJSON(w, http.StatusOK, questions)

	case http.MethodPost:
		var body struct {
			SubjectID      int64  `json:"subject_id"`
			TopicID        int64  `json:"topic_id,omitempty"`
			Question       string `json:"question"`
			Answer         string `json:"answer"`
			TaxonomyLevel  string `json:"taxonomy_level"`
			Difficulty     string `json:"difficulty"`
			ContextSnippet string `json:"context_snippet,omitempty"`
			Marks          int    `json:"marks,omitempty"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.SubjectID == 0 || body.Question == "" || body.Answer == "" {
			writeError(w, http.StatusBadRequest, "subject_id, question and answer are required")
			return
		}
		taxonomy, ok := questiongenerator.ParseTaxonomyLevel(body.TaxonomyLevel)
		if !ok {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("unknown taxonomy level: %s", body.TaxonomyLevel))
			return
		}
		difficulty, ok := questiongenerator.ParseDifficultyLevel(body.Difficulty)
		if !ok {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("unknown difficulty level: %s", body.Difficulty))
			return
		}

		record := questiongenerator.QuestionRecord{
			Question:       body.Question,
			Answer:         body.Answer,
			TaxonomyLevel:  taxonomy,
			Difficulty:     difficulty,
			QuestionType:   questiongenerator.ClassifyQuestionType(body.Question),
			ContextSnippet: body.ContextSnippet,
			Marks:          body.Marks,
		}
		ids, err := s.store.SaveQuestions([]questiongenerator.QuestionRecord{record}, body.SubjectID, body.TopicID)
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		writeJSON(w, http.StatusCreated, map[string]interface{}{"id": ids[0]})

	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func (s *Server) handlePapers(w http.ResponseWriter, r *http.Request) {
	if _, ok := s.requireUser(w, r); !ok {
		return
	}
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var body struct {
		Context string                      `json:"context"`
		Spec    questiongenerator.PaperSpec `json:"spec"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Minute)
	defer cancel()

	paper, err := s.generator.GenerateQuestionPaper(ctx, body.Context, body.Spec)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, paper)
}

func (s *Server) handleQuestionSets(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.requireUser(w, r)
	if !ok {
		return
	}
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	sets, err := s.store.GetQuestionSets(userID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, sets)
}

// handleQuestionSet serves /api/question-sets/{id} and
// /api/question-sets/{id}/export.
func (s *Server) handleQuestionSet(w http.ResponseWriter, r *http.Request) {
	if _, ok := s.requireUser(w, r); !ok {
		return
	}
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	path := strings.TrimPrefix(r.URL.Path, "/api/question-sets/")
	parts := strings.SplitN(path, "/", 2)
	setID, err := strconv.ParseInt(parts[0], 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid question set id")
		return
	}

	set, err := s.store.GetQuestionSet(setID)
	if err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	questions, err := s.store.GetQuestionsByIDs(set.QuestionIDs)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	if len(parts) == 2 && parts[1] == "export" {
		includeAnswers := r.URL.Query().Get("answers") != "0"
		paper := paperFromSet(set, questions)
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		if err := questiongenerator.WritePaperText(w, paper, includeAnswers); err != nil {
			log.Printf("Failed to export question set %d: %v", setID, err)
		}
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"set":       set,
		"questions": questions,
	})
}

// paperFromSet rebuilds a printable paper from stored questions.
func paperFromSet(set *questiongenerator.DBQuestionSet, questions []questiongenerator.DBQuestion) *questiongenerator.QuestionPaper {
	paper := &questiongenerator.QuestionPaper{
		Title:        set.Title,
		Instructions: "Answer all questions based on the given context.",
	}
	for i, q := range questions {
		number := i + 1
		marks := q.Marks
		if marks <= 0 {
			marks = 5
		}
		paper.Questions = append(paper.Questions, questiongenerator.PaperQuestion{
			QuestionNumber: number,
			Question:       q.Question,
			Marks:          marks,
			TaxonomyLevel:  questiongenerator.TaxonomyLevel(q.TaxonomyLevel),
			Difficulty:     questiongenerator.DifficultyLevel(q.Difficulty),
		})
		paper.AnswerKey = append(paper.AnswerKey, questiongenerator.AnswerKeyEntry{
			QuestionNumber: number,
			Answer:         q.Answer,
			ContextSnippet: q.ContextSnippet,
		})
		paper.TotalMarks += marks
	}
	return paper
}
