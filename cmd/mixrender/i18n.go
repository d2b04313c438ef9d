// Package main provides localization for the mixrender CLI.
package main

import (
	"github.com/ideamans/go-l10n"
)

func init() {
	// Register Japanese translations for CLI messages.
	l10n.Register("ja", l10n.LexiconMap{
		// Flag categories
		"Settings": "設定",
		"Logging":  "ログ",
		"Debug":    "デバッグ",

		// Root command
		"Mix timed sound events and encode streamed frames into a finished video": "タイミング指定の効果音をミックスし、ストリーミングされたフレームを動画に仕上げる",
		"mixrender version %s":     "mixrender バージョン %s",
		"Show version information": "バージョン情報を表示",

		// Global flags
		"Settings file (YAML)": "設定ファイル（YAML）",
		"Path to the ffmpeg binary, used when no working system ffmpeg is found": "ffmpegのパス（システムのffmpegが使えない場合に使用）",
		"Log level (debug, info, warn, error)":                                   "ログレベル（debug, info, warn, error）",
		"Suppress all log output":                                                "全てのログ出力を抑制",
		"Enable debug output":                                                    "デバッグ出力を有効化",
		"Directory for debug output":                                             "デバッグ出力のディレクトリ",

		// Render command
		"Render a job file: mix audio, capture frames and combine them":          "ジョブファイルをレンダリング（音声ミックス、フレーム取り込み、結合）",
		"Override the output path of the job":                                    "ジョブの出力先を上書き",
		"Keep the intermediate mix and video files":                              "中間のミックス音声と動画を残す",
		"Output execution summary to file (Markdown, or JSON/YAML by extension)": "実行サマリーをファイルに出力（Markdown、拡張子によりJSON/YAML）",
		"A job file argument is required":                                        "ジョブファイルの引数が必要です",

		// Mix command
		"Mix the sound events of a job file into a float WAV":    "ジョブファイルの効果音を浮動小数点WAVにミックス",
		"Output WAV path (default: derived from the job output)": "出力WAVのパス（デフォルト: ジョブの出力先から決定）",

		// Record and test pattern commands
		"Encode frames streamed to the frame socket into a video":          "フレームソケットに送られたフレームを動画にエンコード",
		"Encode a generated test pattern to check the encoder setup":       "テストパターンをエンコードしてエンコーダー設定を確認",
		"Output MP4 file path (required)":                                  "出力MP4ファイルパス（必須）",
		"Frame size as WIDTHxHEIGHT":                                       "フレームサイズ（幅x高さ）",
		"Frames per second":                                                "フレームレート",
		"Expected duration in seconds (0 = unknown)":                       "予定の長さ（秒、0 = 不明）",
		"Video encoder name":                                               "動画エンコーダー名",
		"Video bitrate (e.g. 8M)":                                          "動画ビットレート（例: 8M）",
		"Flip frames vertically":                                           "フレームを上下反転",
		"Frame socket address":                                             "フレームソケットのアドレス",
		"Seconds to wait for a producer to connect (0 = no limit)":         "送信元の接続を待つ秒数（0 = 無制限）",
		"Seconds without frames before the capture ends":                   "フレームが届かない場合に取り込みを終了するまでの秒数",
		"Page that renders and streams frames (opened in headless Chrome)": "フレームを描画・送信するページ（ヘッドレスChromeで開く）",
		"Path to Chrome executable":                                        "Chrome実行ファイルのパス",
		"Run browser in non-headless mode":                                 "ブラウザを非ヘッドレスモードで実行",
		"The test pattern needs a positive duration":                       "テストパターンには正の長さが必要です",

		// Combine command
		"Mux a video with one or more audio files":                        "動画と1つ以上の音声ファイルを結合",
		"Input video file":                                                "入力動画ファイル",
		"Audio file; the first is used unmodified":                        "音声ファイル（最初のものはそのまま使用）",
		"Music bed, delayed and scaled by --music-delay and --music-gain": "BGM（--music-delay と --music-gain で遅延と音量を調整）",
		"Linear gain of music beds":                                       "BGMの音量（倍率）",
		"Delay of music beds in milliseconds":                             "BGMの遅延（ミリ秒）",
		"AAC bitrate (e.g. 192k)":                                         "AACビットレート（例: 192k）",
		"Let amix normalize the input levels":                             "amixで入力レベルを正規化",
		"Disable the output peak limiter":                                 "出力のピークリミッターを無効化",
		"At least one --audio or --music file is required":                "--audio または --music のファイルが1つ以上必要です",

		// Convert command
		"Convert an audio file to a float WAV":    "音声ファイルを浮動小数点WAVに変換",
		"Output sample rate (default: 44100)":     "出力サンプルレート（デフォルト: 44100）",
		"Input and output arguments are required": "入力と出力の引数が必要です",

		// Encoders command
		"List the encoders of the resolved ffmpeg":   "使用するffmpegのエンコーダー一覧を表示",
		"Encoder kind (video, audio, subtitle, all)": "エンコーダーの種類（video, audio, subtitle, all）",

		// Runtime messages
		"Interrupted, shutting down...": "中断されました。シャットダウン中...",
		"Error: %s":                     "エラー: %s",
		"Rendering":                     "レンダリング",

		// Summary content
		"Render Summary":        "レンダリングサマリー",
		"Output":                "出力先",
		"Generated At":          "生成日時",
		"Elapsed":               "所要時間",
		"Audio":                 "音声",
		"Capture":               "キャプチャ",
		"Output File":           "出力ファイル",
		"Item":                  "項目",
		"Value":                 "値",
		"Sounds":                "サウンド数",
		"Events":                "イベント数",
		"Mix Duration":          "ミックスの長さ",
		"Peak":                  "ピーク",
		"Clipped Samples":       "クリップしたサンプル",
		"Limited":               "リミッター適用",
		"Music Tracks":          "BGM数",
		"Frames":                "フレーム数",
		"Existing video reused": "既存の動画を再利用",
		"Ended By":              "終了理由",
		"Capture Time":          "キャプチャ時間",
		"Finish message":        "終了メッセージ",
		"Timeout":               "タイムアウト",
		"Producer disconnected": "送信元の切断",
		"Cancelled":             "キャンセル",
		"Error":                 "エラー",
		"Resolution":            "解像度",
		"Frame Rate":            "フレームレート",
		"Video Codec":           "動画コーデック",
		"Sample Rate":           "サンプルレート",
		"Audio Bitrate":         "音声ビットレート",
		"Normalize":             "正規化",
		"Limiter":               "リミッター",
		"On":                    "有効",
		"Off":                   "無効",
		"Tracks":                "トラック数",
		"Audio Codec":           "音声コーデック",
		"Duration":              "長さ",
		"File Size":             "ファイルサイズ",
		"Generated by":          "生成:",
	})
}
