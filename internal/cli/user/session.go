package user

import (
	"errors"
	"os"
	"time"

	"estoque/internal/pkg/jsonfile"
)

// sessionPerm restringe o token ao dono do arquivo.
const sessionPerm = 0o600

// session é o conteúdo do arquivo de sessão gravado pelo login.
type session struct {
	Token     string    `json:"token"`
	Username  string    `json:"username"`
	CreatedAt time.Time `json:"criado_em"`
}

// SessionStore guarda o token da sessão atual entre execuções da CLI.
type SessionStore struct {
	Path string
}

// NewSessionStore cria o armazenamento de sessão no caminho informado.
func NewSessionStore(path string) *SessionStore {
	return &SessionStore{Path: path}
}

// Save grava o token emitido no login.
func (s *SessionStore) Save(token, username string) error {
	return jsonfile.WriteMode(s.Path, session{Token: token, Username: username, CreatedAt: time.Now().UTC()}, sessionPerm)
}

// Token lê o token salvo. Sem sessão devolve "" sem erro.
func (s *SessionStore) Token() (string, error) {
	var sess session
	found, err := jsonfile.Read(s.Path, &sess)
	if err != nil || !found {
		return "", err
	}
	return sess.Token, nil
}

// Clear remove a sessão. Sem sessão não é erro.
func (s *SessionStore) Clear() error {
	if err := os.Remove(s.Path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}
