// Package jsonfile lê e grava os arquivos JSON do estoque.
//
// Cada arquivo é sempre regravado por inteiro. Gravações de uma mesma
// operação passam por um Batch: todos os arquivos são primeiro escritos em
// temporários no mesmo diretório e só então renomeados para o destino, de
// modo que uma falha de escrita não deixa metade da operação no disco.
package jsonfile

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"reflect"
)

// Indent é a indentação usada em todos os arquivos (4 espaços).
const Indent = "    "

// ErrCorrupt indica que o arquivo existe mas não contém JSON válido para o destino.
var ErrCorrupt = errors.New("arquivo JSON corrompido")

// Read decodifica o arquivo em v, que deve ser um ponteiro. Retorna found=false
// se o arquivo não existir. Conteúdo inválido é reportado como ErrCorrupt
// (encadeado com o erro do decoder) e v fica com o valor zero: uma linha
// ruim nunca deixa as demais carregadas pela metade.
func Read(path string, v interface{}) (bool, error) {
	target := reflect.ValueOf(v)
	if target.Kind() != reflect.Pointer || target.IsNil() {
		return false, fmt.Errorf("jsonfile: destino de %s deve ser um ponteiro não nulo", path)
	}
	dest := target.Elem()

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("falha ao ler %s: %w", path, err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		dest.Set(reflect.Zero(dest.Type()))
		return true, fmt.Errorf("%w: %s está vazio", ErrCorrupt, path)
	}

	// o decoder continua após erros de tipo; decodificamos num valor novo
	// e só publicamos em v se o arquivo inteiro for válido
	fresh := reflect.New(dest.Type())
	if err := json.Unmarshal(data, fresh.Interface()); err != nil {
		dest.Set(reflect.Zero(dest.Type()))
		return true, fmt.Errorf("%w: %s: %v", ErrCorrupt, path, err)
	}
	dest.Set(fresh.Elem())
	return true, nil
}

// Encode serializa v com indentação de 4 espaços, sem escapar caracteres não-ASCII.
func Encode(v interface{}) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetIndent("", Indent)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Perm é a permissão dos arquivos de dados.
const Perm fs.FileMode = 0o644

// Write grava um único arquivo de forma atômica (temporário + rename).
func Write(path string, v interface{}) error {
	return WriteMode(path, v, Perm)
}

// WriteMode é Write com permissão explícita. O temporário já nasce com perm,
// então o destino nunca fica visível com permissão mais aberta.
func WriteMode(path string, v interface{}, perm fs.FileMode) error {
	b := NewBatch()
	if err := b.StageMode(path, v, perm); err != nil {
		b.Abort()
		return err
	}
	return b.Commit()
}

type staged struct {
	tmp  string
	dest string
}

// Batch acumula arquivos preparados para serem publicados juntos.
type Batch struct {
	files []staged
}

// NewBatch cria um Batch vazio.
func NewBatch() *Batch {
	return &Batch{}
}

// Stage serializa v em um temporário ao lado de path. Nada é visível no destino até Commit.
func (b *Batch) Stage(path string, v interface{}) error {
	return b.StageMode(path, v, Perm)
}

// StageMode é Stage com a permissão final do arquivo.
func (b *Batch) StageMode(path string, v interface{}, perm fs.FileMode) error {
	data, err := Encode(v)
	if err != nil {
		return fmt.Errorf("falha ao serializar %s: %w", path, err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("falha ao criar diretório %s: %w", dir, err)
	}
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("falha ao criar temporário para %s: %w", path, err)
	}
	if err := tmp.Chmod(perm); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("falha ao ajustar permissões de %s: %w", path, err)
	}
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("falha ao escrever %s: %w", path, err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("falha ao sincronizar %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("falha ao fechar %s: %w", path, err)
	}

	b.files = append(b.files, staged{tmp: tmp.Name(), dest: path})
	return nil
}

// Len retorna quantos arquivos estão preparados.
func (b *Batch) Len() int { return len(b.files) }

// Commit renomeia os temporários para os destinos, na ordem em que foram preparados.
func (b *Batch) Commit() error {
	for i, f := range b.files {
		if err := os.Rename(f.tmp, f.dest); err != nil {
			for _, rest := range b.files[i:] {
				_ = os.Remove(rest.tmp)
			}
			b.files = nil
			return fmt.Errorf("falha ao publicar %s: %w", f.dest, err)
		}
	}
	b.files = nil
	return nil
}

// Abort descarta os temporários sem tocar nos destinos.
func (b *Batch) Abort() {
	for _, f := range b.files {
		_ = os.Remove(f.tmp)
	}
	b.files = nil
}
