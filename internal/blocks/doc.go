// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package blocks splits AI summary text into display blocks.
//
// Summaries come back from the summarizer as loosely formatted text: a few
// sentences, sometimes followed by "-", "*" or "•" bullet lines. Parse turns
// that text into an ordered list of paragraphs and bullet lists that a
// renderer can lay out without understanding markdown.
//
// # Key Types
//
//   - Kind: Paragraph or BulletList
//   - Block: one display block (text for paragraphs, items for lists)
//   - Blocks: ordered result of Parse
//
// # Usage
//
//	for _, b := range blocks.Parse(resp.Summary) {
//		switch b.Kind {
//		case blocks.Paragraph:
//			fmt.Println(b.Text)
//		case blocks.BulletList:
//			for _, item := range b.Items {
//				fmt.Println(" -", item)
//			}
//		}
//	}
package blocks
