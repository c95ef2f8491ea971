// Package kocrypt decodes and encodes KOffice encrypted documents.
//
// 컨테이너 구조:
//
//	[3 magic][1 app][1 version][4 algorithm] + CBC 블록
//
// 복호화된 평문:
//
//	[u16 seed][seed % 5120 패딩][u32 길이][내용][SHA1(내용)][블록 경계까지 난수]
package kocrypt

import "fmt"

const (
	// HeaderSize는 평문 헤더 크기
	HeaderSize = 9

	// Version은 지원하는 파일 포맷 버전
	Version byte = 0x01

	// MaxKeyLen은 패스프레이즈에서 사용하는 최대 바이트 수
	MaxKeyLen = 56

	// DefaultMaxPlaintext bounds the content length accepted from a header.
	DefaultMaxPlaintext int64 = 1 << 30

	seedModulus  = 5120
	maxBlockSize = 2048
	lengthSize   = 4
)

// Magic은 암호화 문서 시그니처
var Magic = [3]byte{0x1A, 'K', 'C'}

// App identifies the KOffice application that wrote a document.
type App byte

const (
	AppAny     App = 0x00 // 디코딩 시 모든 앱 허용
	AppKWord   App = 0x01
	AppKSpread App = 0x02
)

// String returns the application name.
func (a App) String() string {
	switch a {
	case AppAny:
		return "any"
	case AppKWord:
		return "kword"
	case AppKSpread:
		return "kspread"
	default:
		return fmt.Sprintf("app(0x%02X)", byte(a))
	}
}

// ParseApp parses an application name as accepted by the CLI.
func ParseApp(name string) (App, error) {
	switch name {
	case "kword":
		return AppKWord, nil
	case "kspread":
		return AppKSpread, nil
	default:
		return AppAny, fmt.Errorf("unknown application %q (kword, kspread)", name)
	}
}

// MimeType returns the MIME type of the encrypted document.
func (a App) MimeType() string {
	switch a {
	case AppKWord:
		return "application/x-kword-crypt"
	case AppKSpread:
		return "application/x-kspread-crypt"
	default:
		return "application/octet-stream"
	}
}
