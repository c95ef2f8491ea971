package cli

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/roboco-io/koimport/internal/filter"
	"github.com/roboco-io/koimport/internal/parser/kocrypt"
	"github.com/roboco-io/koimport/internal/prompt"
)

var (
	encryptOutput      string
	encryptApp         string
	encryptPasswordEnv string
)

var encryptCmd = &cobra.Command{
	Use:   "encrypt <file>",
	Short: "문서를 KOffice 암호화 형식으로 저장",
	Long: `문서를 KWord/KSpread 암호화 컨테이너로 저장합니다.
convert로 다시 복호화할 수 있습니다.

패스워드는 --password-env 환경 변수에서 읽거나 터미널에서 두 번 입력받습니다.

예시:
  koimport encrypt letter.kwd -o letter.kwc
  koimport encrypt sheet.ksp -o sheet.ksc --app kspread --password-env SHEET_PW`,
	Args: cobra.ExactArgs(1),
	RunE: runEncrypt,
}

func init() {
	encryptCmd.Flags().StringVarP(&encryptOutput, "output", "o", "", "출력 파일 경로 (- 는 stdout)")
	encryptCmd.Flags().StringVar(&encryptApp, "app", "kword", "문서 종류 (kword, kspread)")
	encryptCmd.Flags().StringVar(&encryptPasswordEnv, "password-env", "", "패스워드를 읽을 환경 변수")
	_ = encryptCmd.MarkFlagRequired("output")

	rootCmd.AddCommand(encryptCmd)
}

func runEncrypt(cmd *cobra.Command, args []string) error {
	app, err := kocrypt.ParseApp(strings.ToLower(encryptApp))
	if err != nil {
		return err
	}

	plaintext, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("파일을 열 수 없습니다: %w", err)
	}

	pass, err := encryptPassphrase(cmd.Context(), filepath.Base(args[0]))
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	if err := kocrypt.Encode(&buf, plaintext, app, pass, nil); err != nil {
		return fmt.Errorf("암호화 실패: %w", err)
	}

	if encryptOutput == filter.StdoutPath {
		_, err := cmd.OutOrStdout().Write(buf.Bytes())
		return err
	}
	if err := os.WriteFile(encryptOutput, buf.Bytes(), 0644); err != nil {
		return fmt.Errorf("파일 저장 실패: %w", err)
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "암호화 완료: %s (%s, %s)\n",
		encryptOutput, app, humanize.Bytes(uint64(buf.Len())))
	return nil
}

func encryptPassphrase(ctx context.Context, name string) (string, error) {
	if encryptPasswordEnv != "" {
		return prompt.Env{Name: encryptPasswordEnv}.Passphrase(ctx, 1)
	}

	first := prompt.NewTerminal(fmt.Sprintf("%s 새 패스워드: ", name))
	if !first.IsTerminal() {
		return prompt.Env{Name: cfg.Crypt.PasswordEnv}.Passphrase(ctx, 1)
	}
	pass, err := first.Passphrase(ctx, 1)
	if err != nil {
		return "", err
	}
	again, err := prompt.NewTerminal("패스워드 확인: ").Passphrase(ctx, 1)
	if err != nil {
		return "", err
	}
	if pass != again {
		return "", fmt.Errorf("패스워드가 일치하지 않습니다")
	}
	return pass, nil
}
