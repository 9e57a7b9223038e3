// Package main provides localization for the avcrec CLI.
package main

import (
	"github.com/ideamans/go-l10n"
)

func init() {
	// Register Japanese translations for CLI messages.
	l10n.Register("ja", l10n.LexiconMap{
		// Flag categories
		"Input":    "入力",
		"Output":   "出力先",
		"Encoding": "エンコード",
		"Logging":  "ログ",

		// Root command
		"Record camera frames as an H.264 elementary stream": "カメラのフレームをH.264エレメンタリストリームとして記録",
		"avcrec version %s": "avcrec バージョン %s",

		// Record command
		"Encode frames from a source into an .h264 file": "ソースのフレームを.h264ファイルにエンコード",
		"YAML configuration file":                        "YAML設定ファイル",
		"Frame source (pattern, image, raw)":             "フレームソース（pattern, image, raw）",
		"Image or raw NV21 file for the source":          "ソースに使う画像または生NV21ファイル",
		"Capture width in pixels":                        "キャプチャ幅（ピクセル）",
		"Capture height in pixels":                       "キャプチャ高さ（ピクセル）",
		"Stop after this many frames (0 = until interrupted)": "指定フレーム数で停止（0 = 中断まで）",
		"Output .h264 file path":                         "出力.h264ファイルパス",
		"Target bit rate in bits/sec":                    "目標ビットレート（bps）",
		"Frames per second":                              "フレームレート（fps）",
		"Seconds between key frames":                     "キーフレーム間隔（秒）",
		"Chroma conversion (standard, legacy)":           "色差変換方式（standard, legacy）",
		"Wait for each encoder output in milliseconds":   "エンコーダ出力ごとの待機時間（ミリ秒）",
		"Path to ffmpeg executable":                      "ffmpeg実行ファイルのパス",
		"Log level (debug, info, warn, error)":           "ログレベル（debug, info, warn, error）",
		"Suppress all log output":                        "全てのログ出力を抑制",

		// Summary
		"Output recording summary to file (Markdown format)": "録画サマリーをファイルに出力（Markdown形式）",
		"Recording Summary":  "録画サマリー",
		"Generated":          "生成日時",
		"Results":            "実行結果",
		"Settings":           "設定",
		"Item":               "項目",
		"Value":              "値",
		"Output File":        "出力ファイル",
		"File Size":          "ファイルサイズ",
		"Total Duration":     "合計時間",
		"Frames Delivered":   "受信フレーム数",
		"Frames Encoded":     "エンコード済みフレーム数",
		"Frames Dropped":     "破棄フレーム数",
		"Key Frames":         "キーフレーム数",
		"Delta Frames":       "差分フレーム数",
		"Config Units":       "設定ユニット数",
		"Loop Errors":        "ループエラー数",
		"Source":             "ソース",
		"Capture Size":       "キャプチャサイズ",
		"Encoded Size":       "エンコードサイズ",
		"Bit Rate":           "ビットレート",
		"Frame Rate":         "フレームレート",
		"Key Frame Interval": "キーフレーム間隔",
		"Chroma Mode":        "色差変換方式",
		"Generated by":       "生成:",

		// Inspect command
		"Summarize an .h264 elementary stream": ".h264エレメンタリストリームの概要を表示",
		"One .h264 file argument is required":  ".h264ファイル引数が1つ必要です",
	})
}
